package repositories

import (
	"context"
	"errors"

	"github.com/asakaida/monban/internal/entities"
)

// ErrUserNotFound is returned when a status lookup targets an unknown user.
var ErrUserNotFound = errors.New("user not found")

// UserRepository provides the user lookups permission checks need.
type UserRepository interface {
	// Status returns the lifecycle status of the user row.
	Status(ctx context.Context, userID string) (entities.UserStatus, error)
}
