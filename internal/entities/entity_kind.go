package entities

import "fmt"

// EntityKind identifies one of the row kinds the engine can build a scope
// for. The set is closed: dispatch over kinds is table-driven and a kind
// without a registered visibility rule is an error, never a silent allow.
type EntityKind int

const (
	KindOrganization EntityKind = iota
	KindUser
	KindRole
	KindClass
	KindAgeRange
	KindGrade
	KindCategory
	KindSubcategory
	KindSubject
	KindProgram
	KindSchool
	KindSchoolMembership
	KindOrganizationMembership
	KindPermission

	numEntityKinds
)

var kindNames = [numEntityKinds]string{
	KindOrganization:           "organization",
	KindUser:                   "user",
	KindRole:                   "role",
	KindClass:                  "class",
	KindAgeRange:               "age_range",
	KindGrade:                  "grade",
	KindCategory:               "category",
	KindSubcategory:            "subcategory",
	KindSubject:                "subject",
	KindProgram:                "program",
	KindSchool:                 "school",
	KindSchoolMembership:       "school_membership",
	KindOrganizationMembership: "organization_membership",
	KindPermission:             "permission",
}

// String returns the wire tag of the kind.
func (k EntityKind) String() string {
	if k < 0 || k >= numEntityKinds {
		return fmt.Sprintf("entity_kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether the kind is a member of the closed set.
func (k EntityKind) Valid() bool {
	return k >= 0 && k < numEntityKinds
}

// ParseEntityKind resolves a wire tag to its kind.
func ParseEntityKind(name string) (EntityKind, error) {
	for k, n := range kindNames {
		if n == name {
			return EntityKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown entity kind: %q", name)
}

// EntityKinds returns every kind, in declaration order.
func EntityKinds() []EntityKind {
	kinds := make([]EntityKind, numEntityKinds)
	for i := range kinds {
		kinds[i] = EntityKind(i)
	}
	return kinds
}
