package model

// Roles accepted in access tokens.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account able to reserve spots.  Points is the running eco
// points balance and never goes below zero.
//
// Fields:
//  Username     : unique login name, also the reservation owner key.
//  PasswordHash : bcrypt hash of the password.
//  Role         : USER or ADMIN.
//  Points       : eco points balance.
type User struct {
	Username     string
	PasswordHash string
	Role         string
	Points       int
}
