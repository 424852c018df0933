package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asakaida/monban/internal/repositories"
	"github.com/lib/pq"
)

// PostgresMembershipRepository implements MembershipRepository using
// PostgreSQL.
type PostgresMembershipRepository struct {
	db *sql.DB
}

// NewPostgresMembershipRepository creates a new PostgreSQL membership
// repository.
func NewPostgresMembershipRepository(db *sql.DB) repositories.MembershipRepository {
	return &PostgresMembershipRepository{db: db}
}

// SchoolOrganizations maps each school ID to its parent organization ID.
func (r *PostgresMembershipRepository) SchoolOrganizations(ctx context.Context, schoolIDs []string) (map[string]string, error) {
	result := make(map[string]string, len(schoolIDs))
	if len(schoolIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT school_id, organization_id
		FROM schools
		WHERE school_id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(schoolIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query school organizations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schoolID, orgID string
		if err := rows.Scan(&schoolID, &orgID); err != nil {
			return nil, fmt.Errorf("failed to scan school organization: %w", err)
		}
		result[schoolID] = orgID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read school organizations: %w", err)
	}

	return result, nil
}

// RosterClassIDs returns the class IDs the user appears on as a student or
// teacher, restricted to classes owned by the given organizations.
func (r *PostgresMembershipRepository) RosterClassIDs(ctx context.Context, userID string, orgIDs []string) ([]string, error) {
	if userID == "" || len(orgIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT c.class_id
		FROM classes c
		WHERE c.organization_id = ANY($2)
			AND c.class_id IN (
				SELECT class_id FROM class_students WHERE user_id = $1
				UNION
				SELECT class_id FROM class_teachers WHERE user_id = $1
			)
	`
	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(orgIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query roster classes: %w", err)
	}
	defer rows.Close()

	var classIDs []string
	for rows.Next() {
		var classID string
		if err := rows.Scan(&classID); err != nil {
			return nil, fmt.Errorf("failed to scan roster class: %w", err)
		}
		classIDs = append(classIDs, classID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read roster classes: %w", err)
	}

	return classIDs, nil
}
