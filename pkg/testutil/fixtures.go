package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// ProductFixture represents test product data
type ProductFixture struct {
	ID             string
	Code           string
	Name           string
	Category       string
	Unit           string
	UnitPrice      decimal.Decimal
	AlertThreshold decimal.Decimal
	CreatedAt      time.Time
}

// WarehouseFixture represents test warehouse data
type WarehouseFixture struct {
	ID            string
	Name          string
	Capacity      decimal.Decimal
	ResponsibleID string
	CreatedAt     time.Time
}

// EmployeeFixture represents test employee data
type EmployeeFixture struct {
	ID             string
	EmployeeNumber string
	FirstName      string
	LastName       string
	Email          string
	Position       string
	HireDate       time.Time
	IsActive       bool
	CreatedAt      time.Time
}

// UserFixture represents test user data
type UserFixture struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	IsStaff      bool
	IsSuperuser  bool
	Permissions  []string
	CreatedAt    time.Time
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

func (f *FixtureFactory) next() int {
	f.sequence++
	return f.sequence
}

// Product creates a product fixture
func (f *FixtureFactory) Product() *ProductFixture {
	n := f.next()
	return &ProductFixture{
		ID:             uuid.New().String(),
		Code:           fmt.Sprintf("PRD-%04d", n),
		Name:           fmt.Sprintf("Product %d", n),
		Category:       "intrant",
		Unit:           "kg",
		UnitPrice:      decimal.NewFromFloat(12.50),
		AlertThreshold: decimal.NewFromInt(100),
		CreatedAt:      time.Now().UTC(),
	}
}

// Warehouse creates a warehouse fixture
func (f *FixtureFactory) Warehouse(responsibleID string) *WarehouseFixture {
	n := f.next()
	return &WarehouseFixture{
		ID:            uuid.New().String(),
		Name:          fmt.Sprintf("Warehouse %d", n),
		Capacity:      decimal.NewFromInt(10000),
		ResponsibleID: responsibleID,
		CreatedAt:     time.Now().UTC(),
	}
}

// Employee creates an employee fixture
func (f *FixtureFactory) Employee() *EmployeeFixture {
	n := f.next()
	return &EmployeeFixture{
		ID:             uuid.New().String(),
		EmployeeNumber: fmt.Sprintf("EMP-%04d", n),
		FirstName:      "Test",
		LastName:       fmt.Sprintf("Employee%d", n),
		Email:          fmt.Sprintf("employee%d@example.com", n),
		Position:       "ouvrier",
		HireDate:       time.Now().UTC().AddDate(-1, 0, 0),
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
}

// User creates a user fixture with a hashed password
func (f *FixtureFactory) User(password string) *UserFixture {
	n := f.next()
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &UserFixture{
		ID:           uuid.New().String(),
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: string(hash),
		Role:         "staff",
		IsStaff:      true,
		IsSuperuser:  false,
		Permissions:  []string{"inventaire.read", "production.read"},
		CreatedAt:    time.Now().UTC(),
	}
}
