package authorization

import (
	"context"
	"fmt"
	"strings"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/scope"
)

// classScope shows classes through an organization-wide "view classes"
// grant, or through "view school classes" in organizations where the
// principal is a member of a school offering the class.
func classScope(ctx context.Context, sc *scope.Scope, r *Resolver) error {
	viewOrgIDs, err := r.OrgMembershipsWithPermissions(ctx, []entities.PermissionCode{entities.PermissionViewClasses}, OperatorAnd)
	if err != nil {
		return err
	}
	schoolClassOrgIDs, err := r.OrgMembershipsWithPermissions(ctx, []entities.PermissionCode{entities.PermissionViewSchoolClasses}, OperatorAnd)
	if err != nil {
		return err
	}
	mySchoolIDs, err := r.SchoolMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return err
	}

	var branches []string

	if len(viewOrgIDs) > 0 {
		expr, err := sc.In("c.organization_id", "class_view_org_ids", viewOrgIDs)
		if err != nil {
			return err
		}
		branches = append(branches, fmt.Sprintf("(%s)", expr))
	}

	if len(schoolClassOrgIDs) > 0 && len(mySchoolIDs) > 0 {
		orgExpr, err := sc.In("c.organization_id", "class_school_org_ids", schoolClassOrgIDs)
		if err != nil {
			return err
		}
		schoolExpr, err := sc.In("sc_rel.school_id", "class_member_school_ids", mySchoolIDs)
		if err != nil {
			return err
		}
		branches = append(branches, fmt.Sprintf(
			"(%s AND c.class_id IN (SELECT sc_rel.class_id FROM school_classes sc_rel WHERE %s))",
			orgExpr, schoolExpr,
		))
	}

	if len(branches) == 0 {
		sc.WhereFalse()
		return nil
	}
	return sc.Where(strings.Join(branches, " OR "), nil)
}
