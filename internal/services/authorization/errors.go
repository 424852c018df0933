package authorization

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asakaida/monban/internal/entities"
)

// Sentinel errors for the two authorization failure families. None of these
// are retriable: they describe caller identity or state, not transient
// faults. Store errors propagate separately, wrapped with %w.
var (
	// ErrNotAuthenticated is returned when an operation requires an
	// identified principal and none is present.
	ErrNotAuthenticated = errors.New("authorization: user required for this operation")

	// ErrNotAdmin is returned when an admin-only operation is attempted by
	// a non-admin principal.
	ErrNotAdmin = errors.New("authorization: admin rights required for this operation")

	// ErrUserInactive is returned when the checked user is inactive or
	// deleted.
	ErrUserInactive = errors.New("authorization: user is inactive or deleted")

	// ErrNoVisibilityRule is returned when no visibility rule is registered
	// for the requested entity kind. This is an explicit deny, never a
	// silent fallthrough to an unrestricted scope.
	ErrNoVisibilityRule = errors.New("authorization: no visibility rule registered for entity kind")

	// ErrBatchOutOfScope is returned by VerifyInScope when any candidate
	// row falls outside the scope. The whole batch is rejected so partial
	// results cannot reveal which specific rows were restricted.
	ErrBatchOutOfScope = errors.New("authorization: requested rows are out of scope")
)

// PermissionError reports a failed permission check, enumerating the
// organizations and schools where the permission is missing.
type PermissionError struct {
	UserID     string
	Permission entities.PermissionCode
	OrgIDs     []string
	SchoolIDs  []string
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "authorization: user(%s) does not have permission(%s)", e.UserID, e.Permission)
	if len(e.OrgIDs) > 0 {
		fmt.Fprintf(&b, " in organizations(%s)", strings.Join(e.OrgIDs, ", "))
	}
	if len(e.SchoolIDs) > 0 {
		fmt.Fprintf(&b, " in schools(%s)", strings.Join(e.SchoolIDs, ", "))
	}
	return b.String()
}
