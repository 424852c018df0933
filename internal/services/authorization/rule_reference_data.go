package authorization

import (
	"context"
	"fmt"

	"github.com/asakaida/monban/internal/scope"
)

// systemOrOrgScope builds the rule shared by the six reference-data kinds
// (age ranges, grades, categories, subcategories, subjects, programs): a row
// is visible when it belongs to one of the principal's organizations, or
// when it is system-flagged shared data.
func systemOrOrgScope(alias string) RuleFunc {
	return func(ctx context.Context, sc *scope.Scope, r *Resolver) error {
		orgIDs, err := r.OrgMembershipsWithPermissions(ctx, nil, OperatorAnd)
		if err != nil {
			return err
		}
		if len(orgIDs) == 0 {
			return sc.Where(fmt.Sprintf("%s.system = true", alias), nil)
		}
		expr, err := sc.In(alias+".organization_id", "member_org_ids", orgIDs)
		if err != nil {
			return err
		}
		return sc.Where(fmt.Sprintf("%s OR %s.system = true", expr, alias), nil)
	}
}
