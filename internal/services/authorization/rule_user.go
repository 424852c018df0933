package authorization

import (
	"context"
	"fmt"
	"strings"

	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/scope"
)

// userScope shows users through four independent reachability paths, OR'd
// together:
//
//  1. the principal themselves, matched by id and, when the principal
//     carries them, by email and phone (the fallback for principals without
//     a stable internal id);
//  2. users sharing an organization where the principal holds "view users";
//  3. users sharing a school the principal belongs to, inside organizations
//     granting "view my school users";
//  4. users sharing a class roster with the principal, inside organizations
//     granting "view my class users".
//
// Paths 2-4 are membership sub-scopes; each binds its ids under a fresh
// parameter name before being spliced into the parent predicate, so no two
// branches can collide in the shared namespace.
func userScope(ctx context.Context, sc *scope.Scope, r *Resolver) error {
	principal := r.Principal()
	var branches []string

	if principal.UserID != "" {
		if err := sc.SetParameter("self_user_id", principal.UserID); err != nil {
			return err
		}
		branches = append(branches, "u.user_id = :self_user_id")
	}
	if principal.Email != "" {
		if err := sc.SetParameter("self_email", principal.Email); err != nil {
			return err
		}
		branches = append(branches, "u.email = :self_email")
	}
	if principal.Phone != "" {
		if err := sc.SetParameter("self_phone", principal.Phone); err != nil {
			return err
		}
		branches = append(branches, "u.phone = :self_phone")
	}

	// Path 2: direct organization reachability.
	orgIDs, err := r.OrgMembershipsWithPermissions(ctx, []entities.PermissionCode{entities.PermissionViewUsers}, OperatorAnd)
	if err != nil {
		return err
	}
	orgSub, err := MembershipSubScope("organization_memberships", "organization_id", orgIDs)
	if err != nil {
		return err
	}
	if orgSub != nil {
		branch, err := orBranch(sc, "u.user_id", orgSub)
		if err != nil {
			return err
		}
		branches = append(branches, branch)
	}

	// Path 3: school reachability, scoped to organizations held in common.
	schoolOrgIDs, err := r.OrgMembershipsWithPermissions(ctx, []entities.PermissionCode{entities.PermissionViewMySchoolUsers}, OperatorAnd)
	if err != nil {
		return err
	}
	memberSchoolIDs, err := r.MemberSchoolsInOrganizations(ctx, schoolOrgIDs)
	if err != nil {
		return err
	}
	schoolSub, err := MembershipSubScope("school_memberships", "school_id", memberSchoolIDs)
	if err != nil {
		return err
	}
	if schoolSub != nil {
		branch, err := orBranch(sc, "u.user_id", schoolSub)
		if err != nil {
			return err
		}
		branches = append(branches, branch)
	}

	// Path 4: shared class rosters, as fellow student or fellow teacher.
	classOrgIDs, err := r.OrgMembershipsWithPermissions(ctx, []entities.PermissionCode{entities.PermissionViewMyClassUsers}, OperatorAnd)
	if err != nil {
		return err
	}
	classIDs, err := r.RosterClassIDs(ctx, classOrgIDs)
	if err != nil {
		return err
	}
	for _, roster := range []string{"class_students", "class_teachers"} {
		rosterSub, err := MembershipSubScope(roster, "class_id", classIDs)
		if err != nil {
			return err
		}
		if rosterSub != nil {
			branch, err := orBranch(sc, "u.user_id", rosterSub)
			if err != nil {
				return err
			}
			branches = append(branches, branch)
		}
	}

	if len(branches) == 0 {
		sc.WhereFalse()
		return nil
	}
	for i, b := range branches {
		branches[i] = fmt.Sprintf("(%s)", b)
	}
	return sc.Where(strings.Join(branches, " OR "), nil)
}
