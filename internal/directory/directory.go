// Package directory gives the messaging core read access to the
// marketplace's user and property records. The records themselves are owned
// by other subsystems; this package only answers "does this identifier point
// at a real user/property, and who owns the property".
package directory

import (
	"context"
	"errors"

	"homefind/messaging-service/internal/models"
)

// ErrNotFound is returned when the identifier matches no user or property.
var ErrNotFound = errors.New("directory: not found")

type Directory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetProperty(ctx context.Context, id string) (*models.Property, error)
}
