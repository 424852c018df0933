package repositories

import "context"

// MembershipRepository answers the hierarchy questions the engine cannot
// derive from permission maps alone.
type MembershipRepository interface {
	// SchoolOrganizations maps each given school ID to its parent
	// organization ID. Unknown school IDs are absent from the result.
	// This is the explicit org-school relation lookup cross-elimination
	// depends on; it must never be inferred from permission maps.
	SchoolOrganizations(ctx context.Context, schoolIDs []string) (map[string]string, error)

	// RosterClassIDs returns the IDs of classes the user attends as a
	// student or teaches, restricted to classes owned by the given
	// organizations. Empty orgIDs returns no classes.
	RosterClassIDs(ctx context.Context, userID string, orgIDs []string) ([]string, error)
}
