// Package scope provides the composable filter predicate builder the
// authorization engine hands to its resolver and pagination collaborators.
//
// A Scope is a single-owner builder: it is assembled by one logical call
// chain and then executed; concurrent consumers must each build their own.
// All predicates use named parameters (":name"). The parameter namespace is
// shared by every sub-predicate composed into a scope, so composition must
// allocate collision-free names (see SetParameter and Merge); the
// authorization package generates a fresh token per sub-scope for this
// reason.
package scope

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
)

// Queryer is the subset of *sql.DB / *sql.Tx the executors need.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type join struct {
	table string
	alias string
	on    string
}

type condition struct {
	connector string // "", "AND", "OR"
	expr      string
}

// Scope is a mutable SQL predicate builder over one root table.
type Scope struct {
	table    string
	alias    string
	columns  []string
	distinct bool
	joins    []join
	conds    []condition
	params   map[string]interface{}
}

// New creates a scope over the given table with the given alias.
func New(table, alias string) *Scope {
	return &Scope{
		table:  table,
		alias:  alias,
		params: make(map[string]interface{}),
	}
}

// Table returns the root table name.
func (s *Scope) Table() string { return s.table }

// Alias returns the root table alias.
func (s *Scope) Alias() string { return s.alias }

// Select sets the projected columns. Default is "<alias>.*".
func (s *Scope) Select(columns ...string) *Scope {
	s.columns = columns
	return s
}

// Distinct marks the projection as DISTINCT.
func (s *Scope) Distinct() *Scope {
	s.distinct = true
	return s
}

// Join adds an inner join. on may reference named parameters; params binds
// them in the shared namespace.
func (s *Scope) Join(table, alias, on string, params map[string]interface{}) error {
	if err := s.Merge(params); err != nil {
		return err
	}
	s.joins = append(s.joins, join{table: table, alias: alias, on: on})
	return nil
}

// Where sets the base predicate, replacing any existing conditions.
func (s *Scope) Where(expr string, params map[string]interface{}) error {
	if err := s.Merge(params); err != nil {
		return err
	}
	s.conds = []condition{{expr: expr}}
	return nil
}

// AndWhere appends a predicate joined with AND.
func (s *Scope) AndWhere(expr string, params map[string]interface{}) error {
	return s.appendWhere("AND", expr, params)
}

// OrWhere appends a predicate joined with OR. The rendered WHERE clause
// parenthesizes every appended expression, so OR binds against the full
// preceding predicate only when the caller brackets it.
func (s *Scope) OrWhere(expr string, params map[string]interface{}) error {
	return s.appendWhere("OR", expr, params)
}

func (s *Scope) appendWhere(connector, expr string, params map[string]interface{}) error {
	if err := s.Merge(params); err != nil {
		return err
	}
	if len(s.conds) == 0 {
		s.conds = []condition{{expr: expr}}
		return nil
	}
	s.conds = append(s.conds, condition{connector: connector, expr: expr})
	return nil
}

// WhereFalse forces the scope to match no rows. Used whenever an authorized
// ID set turns out empty: the alternative, an unfiltered scope or a
// malformed "IN ()" clause, would leak rows.
func (s *Scope) WhereFalse() {
	s.conds = []condition{{expr: "1 = 0"}}
}

// Restricted reports whether any predicate has been applied.
func (s *Scope) Restricted() bool {
	return len(s.conds) > 0
}

// SetParameter binds a named parameter. Rebinding an existing name to a
// different value is an error: two sub-predicates sharing a name would
// silently corrupt each other's filter values, so composition must allocate
// fresh names instead.
func (s *Scope) SetParameter(name string, value interface{}) error {
	if existing, ok := s.params[name]; ok {
		if fmt.Sprintf("%v", existing) != fmt.Sprintf("%v", value) {
			return fmt.Errorf("scope: parameter %q already bound to a different value", name)
		}
		return nil
	}
	s.params[name] = value
	return nil
}

// Merge binds every parameter from params, failing on collisions.
func (s *Scope) Merge(params map[string]interface{}) error {
	for name, value := range params {
		if err := s.SetParameter(name, value); err != nil {
			return err
		}
	}
	return nil
}

// In renders an id-set membership predicate "<column> = ANY(:<name>)" and
// binds the set under name. The caller must pre-check for empty sets and use
// WhereFalse (or omit the branch) instead; binding an empty set is an error
// so the mistake cannot ship an unfiltered clause.
func (s *Scope) In(column, name string, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", fmt.Errorf("scope: empty id set for parameter %q", name)
	}
	if err := s.SetParameter(name, pq.Array(ids)); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = ANY(:%s)", column, name), nil
}

var paramPattern = regexp.MustCompile(`:[A-Za-z_][A-Za-z0-9_]*`)

// SQL renders the scope to a positional-placeholder query plus its ordered
// argument list. Every named parameter referenced in the statement must be
// bound; unreferenced bindings are ignored.
func (s *Scope) SQL() (string, []interface{}, error) {
	return s.render(s.selectClause())
}

func (s *Scope) selectClause() string {
	cols := "*"
	if len(s.columns) > 0 {
		cols = strings.Join(s.columns, ", ")
	} else if s.alias != "" {
		cols = s.alias + ".*"
	}
	if s.distinct {
		return "SELECT DISTINCT " + cols
	}
	return "SELECT " + cols
}

func (s *Scope) render(selectClause string) (string, []interface{}, error) {
	var b strings.Builder
	b.WriteString(selectClause)
	b.WriteString(" FROM ")
	b.WriteString(s.table)
	if s.alias != "" {
		b.WriteString(" ")
		b.WriteString(s.alias)
	}
	for _, j := range s.joins {
		b.WriteString(" INNER JOIN ")
		b.WriteString(j.table)
		b.WriteString(" ")
		b.WriteString(j.alias)
		if j.on != "" {
			b.WriteString(" ON ")
			b.WriteString(j.on)
		}
	}
	if len(s.conds) > 0 {
		b.WriteString(" WHERE ")
		for i, c := range s.conds {
			if i > 0 {
				b.WriteString(" ")
				b.WriteString(c.connector)
				b.WriteString(" ")
			}
			b.WriteString("(")
			b.WriteString(c.expr)
			b.WriteString(")")
		}
	}
	return s.bind(b.String())
}

// bind rewrites :name placeholders to $n in first-appearance order.
func (s *Scope) bind(query string) (string, []interface{}, error) {
	var args []interface{}
	seen := make(map[string]int)
	var missing []string

	bound := paramPattern.ReplaceAllStringFunc(query, func(token string) string {
		name := token[1:]
		if idx, ok := seen[name]; ok {
			return fmt.Sprintf("$%d", idx)
		}
		value, ok := s.params[name]
		if !ok {
			missing = append(missing, name)
			return token
		}
		args = append(args, value)
		seen[name] = len(args)
		return fmt.Sprintf("$%d", len(args))
	})
	if len(missing) > 0 {
		return "", nil, fmt.Errorf("scope: unbound parameters: %s", strings.Join(missing, ", "))
	}
	return bound, args, nil
}

// Subquery renders the scope as a parenthesizable SELECT with its named
// parameters left in place, for splicing into a parent predicate. The parent
// must absorb this scope's parameters via Merge before rendering.
func (s *Scope) Subquery() string {
	var b strings.Builder
	b.WriteString(s.selectClause())
	b.WriteString(" FROM ")
	b.WriteString(s.table)
	if s.alias != "" {
		b.WriteString(" ")
		b.WriteString(s.alias)
	}
	for _, j := range s.joins {
		b.WriteString(" INNER JOIN ")
		b.WriteString(j.table)
		b.WriteString(" ")
		b.WriteString(j.alias)
		if j.on != "" {
			b.WriteString(" ON ")
			b.WriteString(j.on)
		}
	}
	if len(s.conds) > 0 {
		b.WriteString(" WHERE ")
		for i, c := range s.conds {
			if i > 0 {
				b.WriteString(" ")
				b.WriteString(c.connector)
				b.WriteString(" ")
			}
			b.WriteString("(")
			b.WriteString(c.expr)
			b.WriteString(")")
		}
	}
	return b.String()
}

// Params returns the bound parameter namespace for composition into a parent
// scope.
func (s *Scope) Params() map[string]interface{} {
	return s.params
}

// Query executes the rendered scope.
func (s *Scope) Query(ctx context.Context, q Queryer) (*sql.Rows, error) {
	query, args, err := s.SQL()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scope: query failed: %w", err)
	}
	return rows, nil
}

// Count executes the scope as a COUNT(*) query.
func (s *Scope) Count(ctx context.Context, q Queryer) (int, error) {
	query, args, err := s.render("SELECT COUNT(*)")
	if err != nil {
		return 0, err
	}
	var count int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scope: count failed: %w", err)
	}
	return count, nil
}
