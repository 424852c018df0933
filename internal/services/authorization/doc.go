// Package authorization implements row-level visibility for the school
// domain hierarchy (organizations, schools, classes, users).
//
// Core concepts:
//
//   - Resolver: aggregates one principal's effective permissions across
//     every organization and school membership, memoized single-flight per
//     request. All permission queries go through it.
//
//   - ScopeFactory: translates an entity kind into a scope via exactly one
//     visibility rule, or an unrestricted scope for admins.
//
//   - Visibility rules: one per entity kind, each composing the resolver's
//     id sets into predicate branches. An empty authorized set always
//     produces a match-nothing branch or omits the branch, never an
//     unfiltered scope.
//
// Usage rules:
//
//  1. Build one Resolver per request and discard it with the request.
//  2. Never share a scope.Scope between goroutines; build one per consumer.
//  3. Sub-predicates composed into a parent scope must bind parameters
//     under fresh names (MembershipSubScope does this).
package authorization
