package authorization

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/asakaida/monban/internal/scope"
)

// freshParam allocates a parameter name guaranteed not to collide with any
// other sub-scope's bindings in a shared parent namespace. Two sub-scopes
// binding the same name under one parent silently corrupt each other's
// filter values, so uniqueness here is a contract, not a nicety.
func freshParam(prefix string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + token[:12]
}

// MembershipSubScope builds a reusable sub-scope selecting the distinct
// owning-user ids from a membership relation filtered to fkColumn within
// ids. It returns nil for an empty id set so the caller omits that OR-branch
// entirely rather than emitting a vacuous predicate.
func MembershipSubScope(relation, fkColumn string, ids []string) (*scope.Scope, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sub := scope.New(relation, "m").Select("m.user_id").Distinct()
	expr, err := sub.In("m."+fkColumn, freshParam(fkColumn), ids)
	if err != nil {
		return nil, err
	}
	if err := sub.Where(expr, nil); err != nil {
		return nil, err
	}
	return sub, nil
}

// orBranch splices a membership sub-scope into the parent as an
// "id IN (subquery)" branch, absorbing its parameters into the parent
// namespace.
func orBranch(parent *scope.Scope, idColumn string, sub *scope.Scope) (string, error) {
	if err := parent.Merge(sub.Params()); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s IN (%s)", idColumn, sub.Subquery()), nil
}

// VerifyInScope re-checks a batch of already-loaded rows against a scope by
// counting scope AND id IN candidates. Any shortfall rejects the entire
// batch with ErrBatchOutOfScope: filtering per item would reveal, through
// partial results, exactly which ids were restricted. VerifyInScope takes
// ownership of sc and consumes it.
func VerifyInScope(ctx context.Context, q scope.Queryer, sc *scope.Scope, idColumn string, candidateIDs []string) error {
	if len(candidateIDs) == 0 {
		return nil
	}

	unique := make([]string, 0, len(candidateIDs))
	seen := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	expr, err := sc.In(idColumn, freshParam("verify"), unique)
	if err != nil {
		return err
	}
	if err := sc.AndWhere(expr, nil); err != nil {
		return err
	}

	count, err := sc.Count(ctx, q)
	if err != nil {
		return err
	}
	if count != len(unique) {
		return ErrBatchOutOfScope
	}
	return nil
}

// isSubset reports whether every element of sub appears in super.
func isSubset(sub, super []string) bool {
	index := make(map[string]struct{}, len(super))
	for _, id := range super {
		index[id] = struct{}{}
	}
	for _, id := range sub {
		if _, ok := index[id]; !ok {
			return false
		}
	}
	return true
}
