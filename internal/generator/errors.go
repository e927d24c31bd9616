package generator

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned for a calendar range with an invalid bound
var ErrInvalidRange = errors.New("invalid date range")

// ErrProfileConfig indicates a malformed profile. Rule is 1-based; 0 means
// the problem is with the profile itself.
type ErrProfileConfig struct {
	Profile string
	Rule    int
	Reason  string
}

func (e ErrProfileConfig) Error() string {
	if e.Profile == "" && e.Rule == 0 {
		return "profiles: " + e.Reason
	}
	if e.Rule == 0 {
		return fmt.Sprintf("profile %q: %s", e.Profile, e.Reason)
	}
	return fmt.Sprintf("profile %q rule %d: %s", e.Profile, e.Rule, e.Reason)
}

// Is implements the errors.Is interface for ErrProfileConfig
func (e ErrProfileConfig) Is(target error) bool {
	t, ok := target.(ErrProfileConfig)
	if !ok {
		return false
	}
	return t.Profile == "" || t.Profile == e.Profile
}

// ErrUnknownProfile indicates a profile name that was never loaded
type ErrUnknownProfile struct {
	Name string
}

func (e ErrUnknownProfile) Error() string {
	return fmt.Sprintf("unknown profile %q", e.Name)
}

// Is implements the errors.Is interface for ErrUnknownProfile
func (e ErrUnknownProfile) Is(target error) bool {
	t, ok := target.(ErrUnknownProfile)
	if !ok {
		return false
	}
	return t.Name == "" || t.Name == e.Name
}
