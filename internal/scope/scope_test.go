package scope

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestScope_SQL_Defaults(t *testing.T) {
	sc := New("schools", "s")

	query, args, err := sc.SQL()
	if err != nil {
		t.Fatalf("SQL() returned error: %v", err)
	}
	if query != "SELECT s.* FROM schools s" {
		t.Errorf("SQL() = %q", query)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestScope_SQL_SelectDistinct(t *testing.T) {
	sc := New("school_memberships", "m").Select("m.user_id").Distinct()

	query, _, err := sc.SQL()
	if err != nil {
		t.Fatalf("SQL() returned error: %v", err)
	}
	if query != "SELECT DISTINCT m.user_id FROM school_memberships m" {
		t.Errorf("SQL() = %q", query)
	}
}

func TestScope_SQL_Where(t *testing.T) {
	sc := New("schools", "s")
	if err := sc.Where("s.organization_id = :org_id", map[string]interface{}{"org_id": "org-1"}); err != nil {
		t.Fatalf("Where() returned error: %v", err)
	}

	query, args, err := sc.SQL()
	if err != nil {
		t.Fatalf("SQL() returned error: %v", err)
	}
	if query != "SELECT s.* FROM schools s WHERE (s.organization_id = $1)" {
		t.Errorf("SQL() = %q", query)
	}
	if !reflect.DeepEqual(args, []interface{}{"org-1"}) {
		t.Errorf("args = %v", args)
	}
}

func TestScope_SQL_WhereReplacesConditions(t *testing.T) {
	sc := New("schools", "s")
	if err := sc.Where("s.status = :a", map[string]interface{}{"a": "active"}); err != nil {
		t.Fatal(err)
	}
	if err := sc.Where("s.organization_id = :b", map[string]interface{}{"b": "org-1"}); err != nil {
		t.Fatal(err)
	}

	query, _, err := sc.SQL()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(query, "s.status") {
		t.Errorf("Where must replace prior conditions, got %q", query)
	}
}

func TestScope_SQL_AndOrParenthesization(t *testing.T) {
	sc := New("users", "u")
	if err := sc.Where("u.status = :status", map[string]interface{}{"status": "active"}); err != nil {
		t.Fatal(err)
	}
	if err := sc.AndWhere("u.email = :email", map[string]interface{}{"email": "a@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := sc.OrWhere("u.user_id = :id", map[string]interface{}{"id": "user-1"}); err != nil {
		t.Fatal(err)
	}

	query, args, err := sc.SQL()
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT u.* FROM users u WHERE (u.status = $1) AND (u.email = $2) OR (u.user_id = $3)"
	if query != want {
		t.Errorf("SQL() = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"active", "a@example.com", "user-1"}) {
		t.Errorf("args = %v", args)
	}
}

func TestScope_SQL_AndWhereOnEmptyScopeBecomesBase(t *testing.T) {
	sc := New("users", "u")
	if err := sc.AndWhere("u.status = :status", map[string]interface{}{"status": "active"}); err != nil {
		t.Fatal(err)
	}

	query, _, err := sc.SQL()
	if err != nil {
		t.Fatal(err)
	}
	if query != "SELECT u.* FROM users u WHERE (u.status = $1)" {
		t.Errorf("SQL() = %q", query)
	}
}

func TestScope_SQL_Join(t *testing.T) {
	sc := New("schools", "s")
	err := sc.Join("organizations", "org", "org.organization_id = s.organization_id AND org.status = :org_status",
		map[string]interface{}{"org_status": "active"})
	if err != nil {
		t.Fatalf("Join() returned error: %v", err)
	}

	query, args, err := sc.SQL()
	if err != nil {
		t.Fatal(err)
	}
	want := "SELECT s.* FROM schools s INNER JOIN organizations org ON org.organization_id = s.organization_id AND org.status = $1"
	if query != want {
		t.Errorf("SQL() = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"active"}) {
		t.Errorf("args = %v", args)
	}
}

func TestScope_WhereFalse(t *testing.T) {
	sc := New("schools", "s")
	sc.WhereFalse()

	query, args, err := sc.SQL()
	if err != nil {
		t.Fatal(err)
	}
	if query != "SELECT s.* FROM schools s WHERE (1 = 0)" {
		t.Errorf("SQL() = %q", query)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestScope_Restricted(t *testing.T) {
	sc := New("schools", "s")
	if sc.Restricted() {
		t.Error("fresh scope must be unrestricted")
	}
	sc.WhereFalse()
	if !sc.Restricted() {
		t.Error("scope with a predicate must be restricted")
	}
}

func TestScope_SetParameter_Collision(t *testing.T) {
	sc := New("schools", "s")
	if err := sc.SetParameter("ids", "a"); err != nil {
		t.Fatal(err)
	}

	// Rebinding to the same value is idempotent.
	if err := sc.SetParameter("ids", "a"); err != nil {
		t.Errorf("rebinding to the same value should not error: %v", err)
	}

	// Rebinding to a different value is the collision the namespace
	// contract exists to catch.
	if err := sc.SetParameter("ids", "b"); err == nil {
		t.Error("expected collision error when rebinding to a different value")
	}
}

func TestScope_In(t *testing.T) {
	sc := New("schools", "s")
	expr, err := sc.In("s.organization_id", "org_ids", []string{"org-1", "org-2"})
	if err != nil {
		t.Fatalf("In() returned error: %v", err)
	}
	if expr != "s.organization_id = ANY(:org_ids)" {
		t.Errorf("In() expr = %q", expr)
	}
	if err := sc.Where(expr, nil); err != nil {
		t.Fatal(err)
	}

	query, args, err := sc.SQL()
	if err != nil {
		t.Fatal(err)
	}
	if query != "SELECT s.* FROM schools s WHERE (s.organization_id = ANY($1))" {
		t.Errorf("SQL() = %q", query)
	}
	if len(args) != 1 {
		t.Fatalf("args = %v", args)
	}
	if !reflect.DeepEqual(args[0], pq.Array([]string{"org-1", "org-2"})) {
		t.Errorf("args[0] = %v", args[0])
	}
}

func TestScope_In_EmptySet(t *testing.T) {
	sc := New("schools", "s")
	if _, err := sc.In("s.organization_id", "org_ids", nil); err == nil {
		t.Error("expected error for empty id set")
	}
}

func TestScope_SQL_RepeatedParameter(t *testing.T) {
	sc := New("users", "u")
	err := sc.Where("u.email = :needle OR u.username = :needle", map[string]interface{}{"needle": "alice"})
	if err != nil {
		t.Fatal(err)
	}

	query, args, err := sc.SQL()
	if err != nil {
		t.Fatal(err)
	}
	if query != "SELECT u.* FROM users u WHERE (u.email = $1 OR u.username = $1)" {
		t.Errorf("SQL() = %q", query)
	}
	if !reflect.DeepEqual(args, []interface{}{"alice"}) {
		t.Errorf("args = %v", args)
	}
}

func TestScope_SQL_UnboundParameter(t *testing.T) {
	sc := New("users", "u")
	if err := sc.Where("u.user_id = :missing", nil); err != nil {
		t.Fatal(err)
	}

	if _, _, err := sc.SQL(); err == nil {
		t.Error("expected error for unbound parameter")
	}
}

func TestScope_Subquery(t *testing.T) {
	sub := New("school_memberships", "m").Select("m.user_id").Distinct()
	expr, err := sub.In("m.school_id", "sub_school_ids", []string{"school-1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := sub.Where(expr, nil); err != nil {
		t.Fatal(err)
	}

	want := "SELECT DISTINCT m.user_id FROM school_memberships m WHERE (m.school_id = ANY(:sub_school_ids))"
	if got := sub.Subquery(); got != want {
		t.Errorf("Subquery() = %q, want %q", got, want)
	}

	// Splice into a parent: the parent absorbs the sub-scope's namespace.
	parent := New("users", "u")
	if err := parent.Merge(sub.Params()); err != nil {
		t.Fatal(err)
	}
	if err := parent.Where("u.user_id IN ("+sub.Subquery()+")", nil); err != nil {
		t.Fatal(err)
	}

	query, args, err := parent.SQL()
	if err != nil {
		t.Fatal(err)
	}
	wantParent := "SELECT u.* FROM users u WHERE (u.user_id IN (SELECT DISTINCT m.user_id FROM school_memberships m WHERE (m.school_id = ANY($1))))"
	if query != wantParent {
		t.Errorf("SQL() = %q, want %q", query, wantParent)
	}
	if len(args) != 1 {
		t.Errorf("args = %v", args)
	}
}

func TestScope_Merge_Collision(t *testing.T) {
	a := New("users", "u")
	if err := a.SetParameter("ids", "x"); err != nil {
		t.Fatal(err)
	}

	err := a.Merge(map[string]interface{}{"ids": "y"})
	if err == nil {
		t.Error("expected collision error merging a conflicting namespace")
	}
}
