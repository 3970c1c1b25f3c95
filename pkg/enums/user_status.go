package enums

// UserStatus marks whether an account may act on the platform.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// IsValid reports whether the value matches the canonical user status enum.
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}
