package authorization

import (
	"context"
	"fmt"
	"sort"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/infrastructure/metrics"
	"github.com/asakaida/monban/internal/scope"
)

// RuleFunc is an entity visibility rule: a pure function restricting a fresh
// scope to the rows the resolver's principal may see.
type RuleFunc func(ctx context.Context, sc *scope.Scope, r *Resolver) error

// entityTable describes where an entity kind's rows live.
type entityTable struct {
	table string
	alias string
	id    string
}

var entityTables = map[entities.EntityKind]entityTable{
	entities.KindOrganization:           {"organizations", "org", "organization_id"},
	entities.KindUser:                   {"users", "u", "user_id"},
	entities.KindRole:                   {"roles", "r", "role_id"},
	entities.KindClass:                  {"classes", "c", "class_id"},
	entities.KindAgeRange:               {"age_ranges", "ar", "id"},
	entities.KindGrade:                  {"grades", "g", "id"},
	entities.KindCategory:               {"categories", "cat", "id"},
	entities.KindSubcategory:            {"subcategories", "subcat", "id"},
	entities.KindSubject:                {"subjects", "subj", "id"},
	entities.KindProgram:                {"programs", "prog", "id"},
	entities.KindSchool:                 {"schools", "s", "school_id"},
	entities.KindSchoolMembership:       {"school_memberships", "sm", "school_id"},
	entities.KindOrganizationMembership: {"organization_memberships", "om", "organization_id"},
	entities.KindPermission:             {"permissions", "p", "permission_name"},
}

// ScopeFactory builds row-visibility scopes by entity kind. The rule table
// is fixed at construction and exhaustive over the closed kind set; a kind
// without a rule is an explicit ErrNoVisibilityRule, never a silent allow.
type ScopeFactory struct {
	rules     map[entities.EntityKind]RuleFunc
	collector *metrics.Collector
}

// NewScopeFactory creates a factory with every visibility rule registered.
func NewScopeFactory() *ScopeFactory {
	return &ScopeFactory{
		rules: map[entities.EntityKind]RuleFunc{
			entities.KindOrganization:           organizationScope,
			entities.KindOrganizationMembership: organizationMembershipScope,
			entities.KindRole:                   roleScope,
			entities.KindAgeRange:               systemOrOrgScope("ar"),
			entities.KindGrade:                  systemOrOrgScope("g"),
			entities.KindCategory:               systemOrOrgScope("cat"),
			entities.KindSubcategory:            systemOrOrgScope("subcat"),
			entities.KindSubject:                systemOrOrgScope("subj"),
			entities.KindProgram:                systemOrOrgScope("prog"),
			entities.KindSchool:                 schoolScope,
			entities.KindClass:                  classScope,
			entities.KindUser:                   userScope,
			entities.KindSchoolMembership:       schoolMembershipScope,
			entities.KindPermission:             permissionScope,
		},
	}
}

// WithCollector attaches a metrics collector recording scope builds.
func (f *ScopeFactory) WithCollector(c *metrics.Collector) *ScopeFactory {
	f.collector = c
	return f
}

// Kinds returns the entity kinds with a registered visibility rule, sorted.
func (f *ScopeFactory) Kinds() []entities.EntityKind {
	kinds := make([]entities.EntityKind, 0, len(f.rules))
	for kind := range f.rules {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// ScopeFor builds the scope for one entity kind. Admin and API key
// principals get an unrestricted scope; an invalid kind for a non-admin is a
// hard authorization rejection, since it signals an admin-only operation
// attempted without admin rights.
func (f *ScopeFactory) ScopeFor(ctx context.Context, r *Resolver, kind entities.EntityKind) (*scope.Scope, error) {
	principal := r.Principal()

	if !kind.Valid() {
		if !principal.Admin {
			return nil, ErrNotAdmin
		}
		return nil, fmt.Errorf("authorization: invalid entity kind %d", int(kind))
	}

	t := entityTables[kind]
	sc := scope.New(t.table, t.alias)

	if principal.Admin || principal.ViaAPIKey {
		if f.collector != nil {
			f.collector.RecordScope(kind.String(), true)
		}
		return sc, nil
	}

	rule, ok := f.rules[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoVisibilityRule, kind)
	}
	if err := rule(ctx, sc, r); err != nil {
		return nil, fmt.Errorf("failed to build %s scope: %w", kind, err)
	}
	if f.collector != nil {
		f.collector.RecordScope(kind.String(), false)
	}
	return sc, nil
}

// IDColumn returns the qualified primary id column of the kind's scope,
// for batch verification against already-loaded rows.
func IDColumn(kind entities.EntityKind) string {
	t := entityTables[kind]
	return t.alias + "." + t.id
}
