package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/repositories"
)

// PostgresUserRepository implements UserRepository using PostgreSQL.
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository creates a new PostgreSQL user repository.
func NewPostgresUserRepository(db *sql.DB) repositories.UserRepository {
	return &PostgresUserRepository{db: db}
}

// Status returns the lifecycle status of the user row.
func (r *PostgresUserRepository) Status(ctx context.Context, userID string) (entities.UserStatus, error) {
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM users WHERE user_id = $1`, userID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repositories.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query user status: %w", err)
	}
	return entities.ParseUserStatus(status)
}
