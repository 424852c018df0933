package entities

import "sort"

// PermissionSet is a set of permission codes granted within one organization
// or school.
type PermissionSet map[PermissionCode]struct{}

// NewPermissionSet creates a set from the given codes.
func NewPermissionSet(codes ...PermissionCode) PermissionSet {
	s := make(PermissionSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts a code into the set.
func (s PermissionSet) Add(code PermissionCode) {
	s[code] = struct{}{}
}

// Has reports whether the set contains the code.
func (s PermissionSet) Has(code PermissionCode) bool {
	_, ok := s[code]
	return ok
}

// HasAll reports whether every code is present. An empty slice is trivially
// satisfied.
func (s PermissionSet) HasAll(codes []PermissionCode) bool {
	for _, c := range codes {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one code is present. An empty slice is
// trivially satisfied: any membership qualifies.
func (s PermissionSet) HasAny(codes []PermissionCode) bool {
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Sorted returns the codes in lexical order, for diagnostics output.
func (s PermissionSet) Sorted() []PermissionCode {
	codes := make([]PermissionCode, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// PermissionMap maps an organization or school ID to the permission codes the
// principal holds there through active role grants. A membership whose roles
// carry no grants is present with an empty set; that is distinct from not
// being a member at all (absent key).
type PermissionMap map[string]PermissionSet

// Grant records a code for the given ID, creating the entry if needed.
func (m PermissionMap) Grant(id string, code PermissionCode) {
	set, ok := m[id]
	if !ok {
		set = make(PermissionSet)
		m[id] = set
	}
	set.Add(code)
}

// AddMembership ensures an entry exists for the ID, without granting
// anything. Used for memberships with grant-less roles.
func (m PermissionMap) AddMembership(id string) {
	if _, ok := m[id]; !ok {
		m[id] = make(PermissionSet)
	}
}

// Has reports whether the given permission is granted for the ID.
func (m PermissionMap) Has(id string, code PermissionCode) bool {
	set, ok := m[id]
	return ok && set.Has(code)
}

// IDs returns every ID the principal has a membership entry for, sorted.
func (m PermissionMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IDsWithAll returns the IDs whose sets contain every given code, sorted.
func (m PermissionMap) IDsWithAll(codes []PermissionCode) []string {
	ids := make([]string, 0, len(m))
	for id, set := range m {
		if set.HasAll(codes) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// IDsWithAny returns the IDs whose sets contain at least one of the given
// codes, sorted. Empty codes means every membership qualifies.
func (m PermissionMap) IDsWithAny(codes []PermissionCode) []string {
	ids := make([]string, 0, len(m))
	for id, set := range m {
		if set.HasAny(codes) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
