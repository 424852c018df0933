package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/asakaida/monban/internal/infrastructure/config"
	"github.com/asakaida/monban/internal/infrastructure/database"
	_ "github.com/lib/pq"
)

// SetupTestDB creates a test database connection and runs migrations
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Initialize test config
	if err := config.InitConfig("test"); err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Skipf("Skipping integration test, no test database configured: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		t.Skipf("Skipping integration test, database unavailable: %v", err)
	}

	// Run migrations
	if err := pg.RunMigrations("../../../internal/infrastructure/database/migrations/postgres"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return pg.DB
}

// CleanupTestDB closes the database connection and cleans up test data
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	// Clean up all tables; order respects foreign keys
	tables := []string{
		"class_teachers", "class_students", "school_classes",
		"school_membership_roles", "school_memberships",
		"organization_membership_roles", "organization_memberships",
		"role_permissions", "permissions", "roles",
		"classes", "schools", "users", "organizations",
	}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("Warning: Failed to clean up table %s: %v", table, err)
		}
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}

// seedUser inserts a user row and returns its id.
func seedUser(t *testing.T, db *sql.DB, status string) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO users (email, status) VALUES (NULL, $1) RETURNING user_id`, status,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}

// seedOrganization inserts an organization row and returns its id.
func seedOrganization(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO organizations (name) VALUES ($1) RETURNING organization_id`, name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed organization: %v", err)
	}
	return id
}

// seedSchool inserts a school row under the organization and returns its id.
func seedSchool(t *testing.T, db *sql.DB, orgID, name string) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO schools (organization_id, name) VALUES ($1, $2) RETURNING school_id`, orgID, name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed school: %v", err)
	}
	return id
}

// seedRole inserts an active role with the given grants and returns its id.
func seedRole(t *testing.T, db *sql.DB, orgID string, grants map[string]bool) string {
	t.Helper()
	var id string
	err := db.QueryRow(
		`INSERT INTO roles (organization_id, name) VALUES ($1, 'role') RETURNING role_id`, orgID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed role: %v", err)
	}
	for code, allow := range grants {
		if _, err := db.Exec(
			`INSERT INTO permissions (permission_name) VALUES ($1) ON CONFLICT DO NOTHING`, code,
		); err != nil {
			t.Fatalf("Failed to seed permission %s: %v", code, err)
		}
		if _, err := db.Exec(
			`INSERT INTO role_permissions (role_id, permission_name, allow) VALUES ($1, $2, $3)`,
			id, code, allow,
		); err != nil {
			t.Fatalf("Failed to seed grant %s: %v", code, err)
		}
	}
	return id
}

// seedOrgMembership binds the user into the organization with the given
// roles.
func seedOrgMembership(t *testing.T, db *sql.DB, orgID, userID string, roleIDs ...string) {
	t.Helper()
	var membershipID string
	err := db.QueryRow(
		`INSERT INTO organization_memberships (organization_id, user_id)
		 VALUES ($1, $2) RETURNING organization_membership_id`, orgID, userID,
	).Scan(&membershipID)
	if err != nil {
		t.Fatalf("Failed to seed organization membership: %v", err)
	}
	for _, roleID := range roleIDs {
		if _, err := db.Exec(
			`INSERT INTO organization_membership_roles (organization_membership_id, role_id)
			 VALUES ($1, $2)`, membershipID, roleID,
		); err != nil {
			t.Fatalf("Failed to seed membership role: %v", err)
		}
	}
}

// seedSchoolMembership binds the user into the school with the given roles.
func seedSchoolMembership(t *testing.T, db *sql.DB, schoolID, userID string, roleIDs ...string) {
	t.Helper()
	var membershipID string
	err := db.QueryRow(
		`INSERT INTO school_memberships (school_id, user_id)
		 VALUES ($1, $2) RETURNING school_membership_id`, schoolID, userID,
	).Scan(&membershipID)
	if err != nil {
		t.Fatalf("Failed to seed school membership: %v", err)
	}
	for _, roleID := range roleIDs {
		if _, err := db.Exec(
			`INSERT INTO school_membership_roles (school_membership_id, role_id)
			 VALUES ($1, $2)`, membershipID, roleID,
		); err != nil {
			t.Fatalf("Failed to seed membership role: %v", err)
		}
	}
}
