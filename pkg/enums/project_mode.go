package enums

import "fmt"

// ProjectMode selects the platform fee schedule applied at settlement time.
type ProjectMode string

const (
	ProjectModeCommunity  ProjectMode = "COMMUNITY"
	ProjectModeEnterprise ProjectMode = "ENTERPRISE"
)

var validProjectModes = []ProjectMode{
	ProjectModeCommunity,
	ProjectModeEnterprise,
}

// IsValid reports whether the value matches the canonical project mode enum.
func (m ProjectMode) IsValid() bool {
	for _, candidate := range validProjectModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseProjectMode converts raw input into ProjectMode.
func ParseProjectMode(value string) (ProjectMode, error) {
	for _, candidate := range validProjectModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project mode %q", value)
}
