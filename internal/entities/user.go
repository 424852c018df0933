package entities

import "fmt"

// UserStatus represents the lifecycle status of a user row. Memberships and
// roles carry the same status column.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusDeleted  UserStatus = "deleted"
)

// Active reports whether the status permits the user to act or be acted on.
func (s UserStatus) Active() bool {
	return s == StatusActive
}

// ParseUserStatus validates a status string read from the store.
func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case StatusActive, StatusInactive, StatusDeleted:
		return UserStatus(s), nil
	}
	return "", fmt.Errorf("unknown user status: %q", s)
}
