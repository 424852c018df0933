package authorization

import (
	"context"
	"fmt"

	"github.com/asakaida/monban/internal/scope"
)

// organizationScope shows the organizations the principal belongs to. Any
// membership qualifies; permissions inside the organization do not matter
// for seeing the organization itself.
func organizationScope(ctx context.Context, sc *scope.Scope, r *Resolver) error {
	orgIDs, err := r.OrgMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return err
	}
	if len(orgIDs) == 0 {
		sc.WhereFalse()
		return nil
	}
	expr, err := sc.In("org.organization_id", "member_org_ids", orgIDs)
	if err != nil {
		return err
	}
	return sc.Where(expr, nil)
}

// organizationMembershipScope shows membership rows of the organizations the
// principal belongs to.
func organizationMembershipScope(ctx context.Context, sc *scope.Scope, r *Resolver) error {
	orgIDs, err := r.OrgMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return err
	}
	if len(orgIDs) == 0 {
		sc.WhereFalse()
		return nil
	}
	expr, err := sc.In("om.organization_id", "member_org_ids", orgIDs)
	if err != nil {
		return err
	}
	return sc.Where(expr, nil)
}

// roleScope shows roles owned by the principal's organizations, plus system
// roles, which are global reference data visible to everyone.
func roleScope(ctx context.Context, sc *scope.Scope, r *Resolver) error {
	orgIDs, err := r.OrgMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return err
	}
	if len(orgIDs) == 0 {
		return sc.Where("r.system_role = true", nil)
	}
	expr, err := sc.In("r.organization_id", "member_org_ids", orgIDs)
	if err != nil {
		return err
	}
	return sc.Where(fmt.Sprintf("%s OR r.system_role = true", expr), nil)
}
