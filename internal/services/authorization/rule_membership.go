package authorization

import (
	"context"
	"fmt"
	"strings"

	"github.com/asakaida/monban/internal/scope"
)

// schoolMembershipScope shows school membership rows whose school belongs to
// one of the principal's organizations, or whose school the principal is a
// member of. Both sets empty means no rows, never all rows.
func schoolMembershipScope(ctx context.Context, sc *scope.Scope, r *Resolver) error {
	orgIDs, err := r.OrgMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return err
	}
	schoolIDs, err := r.SchoolMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return err
	}

	var branches []string

	if len(orgIDs) > 0 {
		expr, err := sc.In("sch.organization_id", "membership_org_ids", orgIDs)
		if err != nil {
			return err
		}
		branches = append(branches, fmt.Sprintf(
			"(sm.school_id IN (SELECT sch.school_id FROM schools sch WHERE %s))", expr,
		))
	}

	if len(schoolIDs) > 0 {
		expr, err := sc.In("sm.school_id", "membership_school_ids", schoolIDs)
		if err != nil {
			return err
		}
		branches = append(branches, fmt.Sprintf("(%s)", expr))
	}

	if len(branches) == 0 {
		sc.WhereFalse()
		return nil
	}
	return sc.Where(strings.Join(branches, " OR "), nil)
}

// permissionScope gates the permission catalogue on having at least one
// organization membership; the rows themselves are not tenant-owned.
func permissionScope(ctx context.Context, sc *scope.Scope, r *Resolver) error {
	orgIDs, err := r.OrgMembershipsWithPermissions(ctx, nil, OperatorAnd)
	if err != nil {
		return err
	}
	if len(orgIDs) == 0 {
		sc.WhereFalse()
	}
	return nil
}
