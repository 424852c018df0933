package entities

import (
	"reflect"
	"testing"
)

func TestPermissionSet_Has(t *testing.T) {
	set := NewPermissionSet(PermissionViewSchool, PermissionViewClasses)

	if !set.Has(PermissionViewSchool) {
		t.Error("expected set to contain view_school")
	}
	if set.Has(PermissionViewUsers) {
		t.Error("expected set not to contain view_users")
	}
}

func TestPermissionSet_HasAll(t *testing.T) {
	set := NewPermissionSet(PermissionViewSchool, PermissionViewClasses)

	tests := []struct {
		name  string
		codes []PermissionCode
		want  bool
	}{
		{
			name:  "all present",
			codes: []PermissionCode{PermissionViewSchool, PermissionViewClasses},
			want:  true,
		},
		{
			name:  "one missing",
			codes: []PermissionCode{PermissionViewSchool, PermissionViewUsers},
			want:  false,
		},
		{
			name:  "empty list is trivially satisfied",
			codes: nil,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := set.HasAll(tt.codes); got != tt.want {
				t.Errorf("HasAll(%v) = %v, want %v", tt.codes, got, tt.want)
			}
		})
	}
}

func TestPermissionSet_HasAny(t *testing.T) {
	set := NewPermissionSet(PermissionViewSchool)

	tests := []struct {
		name  string
		codes []PermissionCode
		want  bool
	}{
		{
			name:  "one present",
			codes: []PermissionCode{PermissionViewUsers, PermissionViewSchool},
			want:  true,
		},
		{
			name:  "none present",
			codes: []PermissionCode{PermissionViewUsers, PermissionViewClasses},
			want:  false,
		},
		{
			name:  "empty list means any membership qualifies",
			codes: nil,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := set.HasAny(tt.codes); got != tt.want {
				t.Errorf("HasAny(%v) = %v, want %v", tt.codes, got, tt.want)
			}
		})
	}
}

func TestPermissionSet_Sorted(t *testing.T) {
	set := NewPermissionSet(PermissionViewUsers, PermissionViewSchool, PermissionViewClasses)

	want := []PermissionCode{PermissionViewClasses, PermissionViewSchool, PermissionViewUsers}
	if got := set.Sorted(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
}

func TestPermissionMap_Grant(t *testing.T) {
	m := make(PermissionMap)
	m.Grant("org-1", PermissionViewSchool)
	m.Grant("org-1", PermissionViewClasses)
	m.Grant("org-2", PermissionViewSchool)

	if !m.Has("org-1", PermissionViewSchool) {
		t.Error("expected org-1 to have view_school")
	}
	if !m.Has("org-1", PermissionViewClasses) {
		t.Error("expected org-1 to have view_classes")
	}
	if m.Has("org-2", PermissionViewClasses) {
		t.Error("expected org-2 not to have view_classes")
	}
	if m.Has("org-3", PermissionViewSchool) {
		t.Error("expected absent org-3 to have nothing")
	}
}

func TestPermissionMap_AddMembership(t *testing.T) {
	m := make(PermissionMap)
	m.AddMembership("org-1")

	// A membership with no grants is a real entry, distinct from absence.
	if _, ok := m["org-1"]; !ok {
		t.Fatal("expected org-1 entry to exist")
	}
	if m.Has("org-1", PermissionViewSchool) {
		t.Error("expected grant-less membership to hold no permissions")
	}

	// AddMembership must not erase existing grants.
	m.Grant("org-1", PermissionViewSchool)
	m.AddMembership("org-1")
	if !m.Has("org-1", PermissionViewSchool) {
		t.Error("expected AddMembership to preserve existing grants")
	}
}

func TestPermissionMap_IDs(t *testing.T) {
	m := make(PermissionMap)
	m.Grant("org-2", PermissionViewSchool)
	m.AddMembership("org-1")
	m.AddMembership("org-3")

	want := []string{"org-1", "org-2", "org-3"}
	if got := m.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestPermissionMap_IDsWithAll(t *testing.T) {
	m := make(PermissionMap)
	m.Grant("org-1", PermissionViewSchool)
	m.Grant("org-1", PermissionViewClasses)
	m.Grant("org-2", PermissionViewSchool)
	m.AddMembership("org-3")

	tests := []struct {
		name  string
		codes []PermissionCode
		want  []string
	}{
		{
			name:  "both permissions required",
			codes: []PermissionCode{PermissionViewSchool, PermissionViewClasses},
			want:  []string{"org-1"},
		},
		{
			name:  "single permission",
			codes: []PermissionCode{PermissionViewSchool},
			want:  []string{"org-1", "org-2"},
		},
		{
			name:  "empty required list returns every membership",
			codes: nil,
			want:  []string{"org-1", "org-2", "org-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.IDsWithAll(tt.codes); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IDsWithAll(%v) = %v, want %v", tt.codes, got, tt.want)
			}
		})
	}
}

func TestPermissionMap_IDsWithAny(t *testing.T) {
	m := make(PermissionMap)
	m.Grant("org-1", PermissionViewSchool)
	m.Grant("org-2", PermissionViewClasses)
	m.AddMembership("org-3")

	tests := []struct {
		name  string
		codes []PermissionCode
		want  []string
	}{
		{
			name:  "either permission",
			codes: []PermissionCode{PermissionViewSchool, PermissionViewClasses},
			want:  []string{"org-1", "org-2"},
		},
		{
			name:  "no holder",
			codes: []PermissionCode{PermissionViewUsers},
			want:  []string{},
		},
		{
			name:  "empty required list returns every membership",
			codes: nil,
			want:  []string{"org-1", "org-2", "org-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.IDsWithAny(tt.codes); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IDsWithAny(%v) = %v, want %v", tt.codes, got, tt.want)
			}
		})
	}
}
