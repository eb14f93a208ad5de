package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agroflow/agroflow-backend/internal/identity/service"
	"github.com/agroflow/agroflow-backend/pkg/config"
	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/testutil"

	identityrepo "github.com/agroflow/agroflow-backend/internal/identity/repository"
)

func newIdentityService(mockDB *testutil.MockDB) *service.IdentityService {
	log := logger.New("test", "test")
	db := database.NewFromSqlx(mockDB.DB, log)

	return service.NewIdentityService(
		identityrepo.NewUserRepository(db),
		nil, // no event publisher needed here
		config.JWTConfig{Secret: "test-secret", AccessExpiry: 15 * time.Minute, Issuer: "test"},
		log,
	)
}

func TestBootstrapAdminCreatesFirstSuperuser(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newIdentityService(mockDB)

	mockDB.ExpectQuery("SELECT COUNT(*) FROM users WHERE is_superuser").
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	mockDB.ExpectQuery("INSERT INTO users").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	user, err := svc.BootstrapAdmin(context.Background(), "admin@ferme.example", "correct-horse")

	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)
	assert.Equal(t, identityrepo.PermissionsList{"*"}, user.Permissions)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
	mockDB.ExpectationsWereMet(t)
}

func TestBootstrapAdminSecondAttemptConflicts(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newIdentityService(mockDB)

	mockDB.ExpectQuery("SELECT COUNT(*) FROM users WHERE is_superuser").
		WillReturnRows(testutil.MockRows("count").AddRow(1))

	_, err := svc.BootstrapAdmin(context.Background(), "admin@ferme.example", "correct-horse")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	mockDB.ExpectationsWereMet(t)
}

func TestBootstrapAdminValidatesCredentials(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newIdentityService(mockDB)

	_, err := svc.BootstrapAdmin(context.Background(), "not-an-email", "short")

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "email")
	assert.Contains(t, appErr.Details, "password")
	mockDB.ExpectationsWereMet(t)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newIdentityService(mockDB)

	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mockDB.ExpectQuery("FROM users WHERE email = $1").
		WithArgs("user@ferme.example").
		WillReturnRows(testutil.MockRows(
			"id", "email", "password_hash", "role", "is_staff", "is_superuser",
			"permissions", "created_at", "updated_at",
		).AddRow("u-1", "user@ferme.example", string(hash), "staff", true, false, "[]", now, now))

	_, _, err = svc.Login(context.Background(), "user@ferme.example", "wrong-password")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	mockDB.ExpectationsWereMet(t)
}

func TestLoginIssuesToken(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	svc := newIdentityService(mockDB)

	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mockDB.ExpectQuery("FROM users WHERE email = $1").
		WithArgs("user@ferme.example").
		WillReturnRows(testutil.MockRows(
			"id", "email", "password_hash", "role", "is_staff", "is_superuser",
			"permissions", "created_at", "updated_at",
		).AddRow("u-1", "user@ferme.example", string(hash), "staff", true, false,
			`["inventaire.*"]`, now, now))

	token, user, err := svc.Login(context.Background(), "user@ferme.example", "right-password")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, identityrepo.PermissionsList{"inventaire.*"}, user.Permissions)
	mockDB.ExpectationsWereMet(t)
}
