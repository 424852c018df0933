package authorization

import (
	"github.com/asakaida/monban/internal/entities"
	"github.com/asakaida/monban/internal/infrastructure/metrics"
	"github.com/asakaida/monban/internal/repositories"
)

// Engine is the long-lived entry point for authorization. It binds the
// repositories, the super admin allow-list, and the scope rule table once
// at startup, then mints a request-scoped Resolver per principal.
type Engine struct {
	grants      repositories.GrantRepository
	memberships repositories.MembershipRepository
	users       repositories.UserRepository
	superAdmin  []entities.PermissionCode
	scopes      *ScopeFactory
	collector   *metrics.Collector
}

// NewEngine creates an authorization engine. superAdmin is the static
// permission allow-list granted to admins and machine callers.
func NewEngine(
	grants repositories.GrantRepository,
	memberships repositories.MembershipRepository,
	users repositories.UserRepository,
	superAdmin []entities.PermissionCode,
) *Engine {
	return &Engine{
		grants:      grants,
		memberships: memberships,
		users:       users,
		superAdmin:  superAdmin,
		scopes:      NewScopeFactory(),
	}
}

// WithCollector attaches a metrics collector to every resolver and scope
// factory the engine produces. Must be called before the engine is shared.
func (e *Engine) WithCollector(c *metrics.Collector) *Engine {
	e.collector = c
	e.scopes.WithCollector(c)
	return e
}

// ResolverFor creates a request-scoped resolver for the given principal.
func (e *Engine) ResolverFor(principal entities.Principal) *Resolver {
	r := NewResolver(principal, e.grants, e.memberships, e.users, e.superAdmin)
	if e.collector != nil {
		r.WithCollector(e.collector)
	}
	return r
}

// Scopes returns the shared scope factory.
func (e *Engine) Scopes() *ScopeFactory {
	return e.scopes
}
