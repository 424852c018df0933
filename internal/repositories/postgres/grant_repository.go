package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/repositories"
)

// PostgresGrantRepository implements GrantRepository using PostgreSQL.
type PostgresGrantRepository struct {
	db *sql.DB
}

// NewPostgresGrantRepository creates a new PostgreSQL grant repository.
func NewPostgresGrantRepository(db *sql.DB) repositories.GrantRepository {
	return &PostgresGrantRepository{db: db}
}

// OrganizationGrants returns organization_id -> permission codes for the
// user's active organization memberships. A single query walks membership ->
// role -> grant; bool_and(allow) drops a code from an organization when any
// active role explicitly denies it. Memberships whose roles grant nothing
// come back as a (organization_id, NULL) row and produce an empty-set entry,
// which is distinct from not being a member.
func (r *PostgresGrantRepository) OrganizationGrants(ctx context.Context, userID string) (entities.PermissionMap, error) {
	perms := make(entities.PermissionMap)
	if userID == "" {
		return perms, nil
	}

	query := `
		SELECT om.organization_id, rp.permission_name
		FROM organization_memberships om
		LEFT JOIN organization_membership_roles omr
			ON omr.organization_membership_id = om.organization_membership_id
		LEFT JOIN roles r ON r.role_id = omr.role_id AND r.status = 'active'
		LEFT JOIN role_permissions rp ON rp.role_id = r.role_id
		WHERE om.user_id = $1 AND om.status = 'active'
		GROUP BY om.organization_id, rp.permission_name
		HAVING rp.permission_name IS NULL OR bool_and(rp.allow) = true
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query organization grants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orgID string
		var code sql.NullString
		if err := rows.Scan(&orgID, &code); err != nil {
			return nil, fmt.Errorf("failed to scan organization grant: %w", err)
		}
		if code.Valid {
			perms.Grant(orgID, entities.PermissionCode(code.String))
		} else {
			perms.AddMembership(orgID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read organization grants: %w", err)
	}

	return perms, nil
}

// SchoolGrants is the school counterpart of OrganizationGrants, keyed by
// school_id.
func (r *PostgresGrantRepository) SchoolGrants(ctx context.Context, userID string) (entities.PermissionMap, error) {
	perms := make(entities.PermissionMap)
	if userID == "" {
		return perms, nil
	}

	query := `
		SELECT sm.school_id, rp.permission_name
		FROM school_memberships sm
		LEFT JOIN school_membership_roles smr
			ON smr.school_membership_id = sm.school_membership_id
		LEFT JOIN roles r ON r.role_id = smr.role_id AND r.status = 'active'
		LEFT JOIN role_permissions rp ON rp.role_id = r.role_id
		WHERE sm.user_id = $1 AND sm.status = 'active'
		GROUP BY sm.school_id, rp.permission_name
		HAVING rp.permission_name IS NULL OR bool_and(rp.allow) = true
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query school grants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schoolID string
		var code sql.NullString
		if err := rows.Scan(&schoolID, &code); err != nil {
			return nil, fmt.Errorf("failed to scan school grant: %w", err)
		}
		if code.Valid {
			perms.Grant(schoolID, entities.PermissionCode(code.String))
		} else {
			perms.AddMembership(schoolID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read school grants: %w", err)
	}

	return perms, nil
}
