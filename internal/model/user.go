package model

import "time"

// Role values stored in the users table and embedded in JWT claims.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User mirrors the 'users' table.  The user ID doubles as the stable
// holder identity the reservation core attaches to holds and bookings.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
