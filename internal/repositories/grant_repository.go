package repositories

import (
	"context"

	"github.com/asakaida/monban/internal/entities"
)

// GrantRepository loads the permission datasets a principal's memberships
// grant. Each method issues exactly one query; the resolver is responsible
// for calling each at most once per request.
type GrantRepository interface {
	// OrganizationGrants returns organization_id -> granted permission codes
	// for the user's active organization memberships through active roles.
	// Memberships whose roles carry no allowed grants still appear in the
	// map with an empty set. An empty userID returns an empty map.
	OrganizationGrants(ctx context.Context, userID string) (entities.PermissionMap, error)

	// SchoolGrants is the school-membership counterpart, keyed by school_id.
	SchoolGrants(ctx context.Context, userID string) (entities.PermissionMap, error)
}
