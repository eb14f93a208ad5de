package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/errors"
)

// User is an account with module-scoped permissions
type User struct {
	ID           string          `db:"id" json:"id"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Role         string          `db:"role" json:"role"`
	IsStaff      bool            `db:"is_staff" json:"is_staff"`
	IsSuperuser  bool            `db:"is_superuser" json:"is_superuser"`
	Permissions  PermissionsList `db:"permissions" json:"permissions"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// PermissionsList maps the JSONB permissions column to a string slice
type PermissionsList []string

// Scan implements sql.Scanner
func (p *PermissionsList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = nil
		return nil
	}
	return nil
}

// Value implements driver.Valuer
func (p PermissionsList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// UserRepository handles user persistence
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, role, is_staff, is_superuser, permissions, created_at, updated_at`

// Create inserts a user
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, email, password_hash, role, is_staff, is_superuser, permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Role,
		user.IsStaff, user.IsSuperuser, user.Permissions,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User

	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User

	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List lists all users
func (r *UserRepository) List(ctx context.Context) ([]*User, error) {
	var users []*User

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdatePermissions replaces a user's permission set
func (r *UserRepository) UpdatePermissions(ctx context.Context, id string, perms PermissionsList) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET permissions = $2, updated_at = NOW() WHERE id = $1`, id, perms)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("user")
	}

	return nil
}

// ListAlertRecipientIDs returns the IDs of users who should receive alerts
// for a module: superusers plus holders of a module-wide permission.
func (r *UserRepository) ListAlertRecipientIDs(ctx context.Context, module string) ([]string, error) {
	var ids []string

	query := `
		SELECT id FROM users
		WHERE is_superuser = TRUE OR permissions ?| $1
	`
	err := r.db.SelectContext(ctx, &ids, query, pq.StringArray{"*", module + ".*"})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// CountSuperusers returns how many superuser accounts exist
func (r *UserRepository) CountSuperusers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE is_superuser = TRUE`)
	return count, err
}
