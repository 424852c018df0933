package authorization

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/infrastructure/metrics"
	"github.com/asakaida/monban/internal/repositories"
)

// Operator selects how a required permission list is combined when filtering
// memberships.
type Operator string

const (
	// OperatorAnd requires every listed permission. Default.
	OperatorAnd Operator = "AND"
	// OperatorOr requires at least one listed permission.
	OperatorOr Operator = "OR"
)

// PermissionContext names the organizations and schools a permission check
// runs against, and optionally the user being acted on (defaults to the
// principal).
type PermissionContext struct {
	OrgIDs    []string
	SchoolIDs []string
	UserID    string
}

// CheckResult is the outcome of HasPermissions.
type CheckResult struct {
	Passed                bool
	UnauthorizedOrgIDs    []string
	UnauthorizedSchoolIDs []string
	Inactive              bool
}

// permCell is the single-flight memo for one permission dataset:
// not started (done=false, no flight), in flight (a singleflight call is
// pending), or done (value/err cached for the resolver's lifetime).
type permCell struct {
	mu    sync.Mutex
	done  bool
	value entities.PermissionMap
	err   error
}

// Resolver aggregates one principal's effective permissions across every
// organization and school they belong to. It is request-scoped: permission
// maps are computed lazily, at most once each, and discarded with the
// resolver. A Resolver is safe for concurrent permission queries; scopes
// built from it are not.
type Resolver struct {
	principal   entities.Principal
	grants      repositories.GrantRepository
	memberships repositories.MembershipRepository
	users       repositories.UserRepository
	superAdmin  entities.PermissionSet
	collector   *metrics.Collector

	flight     singleflight.Group
	orgCell    permCell
	schoolCell permCell
}

// NewResolver creates a resolver for one principal. superAdmin is the
// injected static permission allow-list used for admins and machine callers.
func NewResolver(
	principal entities.Principal,
	grants repositories.GrantRepository,
	memberships repositories.MembershipRepository,
	users repositories.UserRepository,
	superAdmin []entities.PermissionCode,
) *Resolver {
	return &Resolver{
		principal:   principal,
		grants:      grants,
		memberships: memberships,
		users:       users,
		superAdmin:  entities.NewPermissionSet(superAdmin...),
	}
}

// WithCollector attaches a metrics collector recording check decisions.
// Must be called before the resolver is shared.
func (r *Resolver) WithCollector(c *metrics.Collector) *Resolver {
	r.collector = c
	return r
}

// Principal returns the principal this resolver was built for.
func (r *Resolver) Principal() entities.Principal {
	return r.principal
}

// OrganizationPermissions returns the memoized organization permission map.
// Concurrent callers share a single fetch; the outcome, error included, is
// cached for the resolver's lifetime.
func (r *Resolver) OrganizationPermissions(ctx context.Context) (entities.PermissionMap, error) {
	return r.permissions(ctx, &r.orgCell, "organization", r.grants.OrganizationGrants)
}

// SchoolPermissions returns the memoized school permission map.
func (r *Resolver) SchoolPermissions(ctx context.Context) (entities.PermissionMap, error) {
	return r.permissions(ctx, &r.schoolCell, "school", r.grants.SchoolGrants)
}

func (r *Resolver) permissions(
	ctx context.Context,
	cell *permCell,
	key string,
	fetch func(context.Context, string) (entities.PermissionMap, error),
) (entities.PermissionMap, error) {
	cell.mu.Lock()
	if cell.done {
		value, err := cell.value, cell.err
		cell.mu.Unlock()
		return value, err
	}
	cell.mu.Unlock()

	value, err, _ := r.flight.Do(key, func() (interface{}, error) {
		m, err := fetch(ctx, r.principal.UserID)
		cell.mu.Lock()
		cell.done = true
		cell.value = m
		cell.err = err
		cell.mu.Unlock()
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return value.(entities.PermissionMap), nil
}

// OrgMembershipsWithPermissions returns the IDs of organizations where the
// principal holds the required permissions. An empty required list returns
// every organization the principal belongs to: any membership qualifies.
func (r *Resolver) OrgMembershipsWithPermissions(ctx context.Context, required []entities.PermissionCode, op Operator) ([]string, error) {
	perms, err := r.OrganizationPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return filterMemberships(perms, required, op), nil
}

// SchoolMembershipsWithPermissions is the school counterpart of
// OrgMembershipsWithPermissions.
func (r *Resolver) SchoolMembershipsWithPermissions(ctx context.Context, required []entities.PermissionCode, op Operator) ([]string, error) {
	perms, err := r.SchoolPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return filterMemberships(perms, required, op), nil
}

func filterMemberships(perms entities.PermissionMap, required []entities.PermissionCode, op Operator) []string {
	if len(required) == 0 {
		return perms.IDs()
	}
	if op == OperatorOr {
		return perms.IDsWithAny(required)
	}
	return perms.IDsWithAll(required)
}

// PermissionsInOrganization lists the permission codes the principal holds
// in the given organization, sorted. Diagnostic/UI form.
func (r *Resolver) PermissionsInOrganization(ctx context.Context, orgID string) ([]entities.PermissionCode, error) {
	perms, err := r.OrganizationPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return perms[orgID].Sorted(), nil
}

// PermissionsInSchool lists the permission codes the principal holds in the
// given school, sorted.
func (r *Resolver) PermissionsInSchool(ctx context.Context, schoolID string) ([]entities.PermissionCode, error) {
	perms, err := r.SchoolPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return perms[schoolID].Sorted(), nil
}

// MemberSchoolsInOrganizations returns the schools the principal is a member
// of whose parent organization is among orgIDs. Used by the User rule's
// school reachability path.
func (r *Resolver) MemberSchoolsInOrganizations(ctx context.Context, orgIDs []string) ([]string, error) {
	if len(orgIDs) == 0 {
		return nil, nil
	}
	schoolIDs, err := r.SchoolMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return nil, err
	}
	if len(schoolIDs) == 0 {
		return nil, nil
	}
	parents, err := r.memberships.SchoolOrganizations(ctx, schoolIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve school organizations: %w", err)
	}
	allowed := make(map[string]struct{}, len(orgIDs))
	for _, id := range orgIDs {
		allowed[id] = struct{}{}
	}
	var kept []string
	for _, schoolID := range schoolIDs {
		if _, ok := allowed[parents[schoolID]]; ok {
			kept = append(kept, schoolID)
		}
	}
	sort.Strings(kept)
	return kept, nil
}

// RosterClassIDs returns the classes the principal attends or teaches within
// the given organizations. Used by the User rule's class reachability path.
func (r *Resolver) RosterClassIDs(ctx context.Context, orgIDs []string) ([]string, error) {
	if len(orgIDs) == 0 {
		return nil, nil
	}
	return r.memberships.RosterClassIDs(ctx, r.principal.UserID, orgIDs)
}

// HasPermissions checks the permission against every organization and school
// named in the context.
//
// Machine callers bypass row-level checks entirely: they pass iff the
// permission is in the static allow-list. For everyone else the target user
// must be active, admins pass on allow-listed permissions, and otherwise the
// unauthorized org and school sets are computed independently and then
// reduced by cross-elimination over the org-school relation: a school is
// excused when its parent organization is authorized, and an organization is
// excused when every checked school under it is individually authorized.
func (r *Resolver) HasPermissions(ctx context.Context, permCtx PermissionContext, code entities.PermissionCode) (CheckResult, error) {
	result, err := r.hasPermissions(ctx, permCtx, code)
	if err == nil && r.collector != nil {
		r.collector.RecordDecision(string(code), result.Passed)
	}
	return result, err
}

func (r *Resolver) hasPermissions(ctx context.Context, permCtx PermissionContext, code entities.PermissionCode) (CheckResult, error) {
	if r.principal.ViaAPIKey {
		return CheckResult{Passed: r.superAdmin.Has(code)}, nil
	}

	targetID := permCtx.UserID
	if targetID == "" {
		targetID = r.principal.UserID
	}
	if targetID != "" {
		status, err := r.users.Status(ctx, targetID)
		if err == repositories.ErrUserNotFound {
			return CheckResult{Inactive: true}, nil
		}
		if err != nil {
			return CheckResult{}, fmt.Errorf("failed to check user status: %w", err)
		}
		if !status.Active() {
			return CheckResult{Inactive: true}, nil
		}
	}

	if r.principal.Admin && r.superAdmin.Has(code) {
		return CheckResult{Passed: true}, nil
	}

	if len(permCtx.OrgIDs) == 0 && len(permCtx.SchoolIDs) == 0 {
		return CheckResult{}, nil
	}

	orgPerms, err := r.OrganizationPermissions(ctx)
	if err != nil {
		return CheckResult{}, err
	}
	schoolPerms, err := r.SchoolPermissions(ctx)
	if err != nil {
		return CheckResult{}, err
	}

	unauthorizedOrgs := make(map[string]struct{})
	for _, orgID := range permCtx.OrgIDs {
		if !orgPerms.Has(orgID, code) {
			unauthorizedOrgs[orgID] = struct{}{}
		}
	}
	unauthorizedSchools := make(map[string]struct{})
	for _, schoolID := range permCtx.SchoolIDs {
		if !schoolPerms.Has(schoolID, code) {
			unauthorizedSchools[schoolID] = struct{}{}
		}
	}

	// Cross-elimination needs the real org-school relation, never an
	// assumption about which schools belong where.
	if len(permCtx.SchoolIDs) > 0 && (len(unauthorizedSchools) > 0 || len(unauthorizedOrgs) > 0) {
		parents, err := r.memberships.SchoolOrganizations(ctx, permCtx.SchoolIDs)
		if err != nil {
			return CheckResult{}, fmt.Errorf("failed to resolve school organizations: %w", err)
		}

		for schoolID := range unauthorizedSchools {
			if parent, ok := parents[schoolID]; ok && orgPerms.Has(parent, code) {
				delete(unauthorizedSchools, schoolID)
			}
		}

		for orgID := range unauthorizedOrgs {
			covered := false
			for _, schoolID := range permCtx.SchoolIDs {
				if parents[schoolID] != orgID {
					continue
				}
				if !schoolPerms.Has(schoolID, code) {
					covered = false
					break
				}
				covered = true
			}
			if covered {
				delete(unauthorizedOrgs, orgID)
			}
		}
	}

	result := CheckResult{
		Passed:                len(unauthorizedOrgs) == 0 && len(unauthorizedSchools) == 0,
		UnauthorizedOrgIDs:    sortedKeys(unauthorizedOrgs),
		UnauthorizedSchoolIDs: sortedKeys(unauthorizedSchools),
	}
	return result, nil
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Allowed is the boolean form of HasPermissions.
func (r *Resolver) Allowed(ctx context.Context, permCtx PermissionContext, code entities.PermissionCode) (bool, error) {
	result, err := r.HasPermissions(ctx, permCtx, code)
	if err != nil {
		return false, err
	}
	return result.Passed, nil
}

// RejectIfNotAllowed returns an error describing the failed check, or nil
// when the permission is held everywhere the context names.
func (r *Resolver) RejectIfNotAllowed(ctx context.Context, permCtx PermissionContext, code entities.PermissionCode) error {
	result, err := r.HasPermissions(ctx, permCtx, code)
	if err != nil {
		return err
	}
	if result.Inactive {
		return ErrUserInactive
	}
	if !result.Passed {
		return &PermissionError{
			UserID:     r.principal.UserID,
			Permission: code,
			OrgIDs:     result.UnauthorizedOrgIDs,
			SchoolIDs:  result.UnauthorizedSchoolIDs,
		}
	}
	return nil
}

// RejectIfNotAuthenticated returns ErrNotAuthenticated for anonymous
// principals.
func (r *Resolver) RejectIfNotAuthenticated() error {
	if !r.principal.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// RejectIfNotAdmin returns ErrNotAdmin for non-admin principals.
func (r *Resolver) RejectIfNotAdmin() error {
	if !r.principal.Admin {
		return ErrNotAdmin
	}
	return nil
}
