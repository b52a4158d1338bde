package auth

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSupplier Role = "supplier"
	RoleCounty   Role = "county"
	RoleAdmin    Role = "admin"
)

// User is an exchange account. PasswordHash never leaves the package.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Role         Role       `json:"role" db:"role"`
	SupplierID   *uuid.UUID `json:"supplier_id,omitempty" db:"supplier_id"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
