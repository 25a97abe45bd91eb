// Package repository holds the stores behind the reservation service: the
// static lot catalog, the in-memory reservation store, user accounts and
// refresh tokens.  The sentinel values below let higher layers tell
// failure scenarios apart with errors.Is.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as inserting a reservation id that already
// exists. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a lot, reservation or refresh token does
// not exist.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
)
