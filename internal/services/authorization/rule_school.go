package authorization

import (
	"context"
	"fmt"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/scope"
)

// schoolScope shows schools through two independent paths: a blanket
// "view school" grant covering every school of an organization, and a
// "view my school" grant covering only schools the principal is a member
// of.
//
// When both paths exist the full bracketed OR is only worth emitting if the
// membership path reaches organizations the blanket path does not already
// cover; otherwise the blanket condition alone returns the same rows with
// one predicate instead of three. The subset check is purely an
// optimization: it changes how much SQL is issued, never which rows come
// back.
func schoolScope(ctx context.Context, sc *scope.Scope, r *Resolver) error {
	orgIDs, err := r.OrgMembershipsWithPermissions(ctx, []entities.PermissionCode{entities.PermissionViewSchool}, OperatorAnd)
	if err != nil {
		return err
	}
	mySchoolOrgIDs, err := r.OrgMembershipsWithPermissions(ctx, []entities.PermissionCode{entities.PermissionViewMySchool}, OperatorAnd)
	if err != nil {
		return err
	}
	schoolIDs, err := r.SchoolMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return err
	}

	blanket := len(orgIDs) > 0
	// The membership path needs both the grant and at least one actual
	// school membership; a grant over zero schools matches nothing.
	membership := len(mySchoolOrgIDs) > 0 && len(schoolIDs) > 0

	switch {
	case blanket && membership && !isSubset(mySchoolOrgIDs, orgIDs):
		blanketExpr, err := sc.In("s.organization_id", "school_view_org_ids", orgIDs)
		if err != nil {
			return err
		}
		myOrgExpr, err := sc.In("s.organization_id", "school_my_org_ids", mySchoolOrgIDs)
		if err != nil {
			return err
		}
		memberExpr, err := sc.In("s.school_id", "school_member_ids", schoolIDs)
		if err != nil {
			return err
		}
		return sc.Where(fmt.Sprintf("(%s) OR (%s AND %s)", blanketExpr, myOrgExpr, memberExpr), nil)

	case blanket:
		expr, err := sc.In("s.organization_id", "school_view_org_ids", orgIDs)
		if err != nil {
			return err
		}
		return sc.Where(expr, nil)

	case membership:
		myOrgExpr, err := sc.In("s.organization_id", "school_my_org_ids", mySchoolOrgIDs)
		if err != nil {
			return err
		}
		memberExpr, err := sc.In("s.school_id", "school_member_ids", schoolIDs)
		if err != nil {
			return err
		}
		return sc.Where(fmt.Sprintf("%s AND %s", myOrgExpr, memberExpr), nil)

	default:
		sc.WhereFalse()
		return nil
	}
}
