package store

import (
	"errors"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ErrUserNotFound is returned when a username does not resolve
var ErrUserNotFound = errors.New("user not found")

// UsersStore abstracts user lookup for authentication
type UsersStore interface {
	// FetchByUsername retrieves an active user by username
	FetchByUsername(username string) (*model.User, error)

	// FetchByID retrieves an active user by ID
	FetchByID(id uint) (*model.User, error)
}
