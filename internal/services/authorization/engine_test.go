package authorization

import (
	"context"
	"testing"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/infrastructure/metrics"
)

func TestEngine_ResolverFor(t *testing.T) {
	grants := &fakeGrantRepository{
		orgGrants: grantMap(map[string][]entities.PermissionCode{"org-1": nil}),
	}
	engine := NewEngine(grants, &fakeMembershipRepository{}, activeUsers("user-1"), entities.SuperAdminPermissions())

	r := engine.ResolverFor(entities.Principal{UserID: "user-1"})
	if r.Principal().UserID != "user-1" {
		t.Errorf("Principal().UserID = %q", r.Principal().UserID)
	}

	ids, err := r.OrgMembershipsWithPermissions(context.Background(), nil, OperatorAnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "org-1" {
		t.Errorf("memberships = %v", ids)
	}

	// Resolvers are request-scoped: a second resolver fetches again.
	r2 := engine.ResolverFor(entities.Principal{UserID: "user-1"})
	if _, err := r2.OrgMembershipsWithPermissions(context.Background(), nil, OperatorAnd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grants.orgCalls != 2 {
		t.Errorf("expected one fetch per resolver, got %d", grants.orgCalls)
	}
}

func TestEngine_CollectorPropagation(t *testing.T) {
	grants := &fakeGrantRepository{orgGrants: grantMap(nil)}
	collector := metrics.NewCollector()
	engine := NewEngine(grants, &fakeMembershipRepository{}, activeUsers("user-1"), entities.SuperAdminPermissions()).
		WithCollector(collector)

	r := engine.ResolverFor(entities.Principal{UserID: "user-1"})
	if _, err := r.HasPermissions(context.Background(), PermissionContext{OrgIDs: []string{"org-1"}}, entities.PermissionViewSchool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count := collector.GetDecisionMetrics().FailedCounts[string(entities.PermissionViewSchool)]; count != 1 {
		t.Errorf("expected decision to be recorded, got %d", count)
	}

	if _, err := engine.Scopes().ScopeFor(context.Background(), r, entities.KindOrganization); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := collector.GetScopeMetrics().RestrictedCounts["organization"]; count != 1 {
		t.Errorf("expected scope build to be recorded, got %d", count)
	}
}
