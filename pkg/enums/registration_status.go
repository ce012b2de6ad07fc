package enums

import "fmt"

// RegistrationStatus tracks a party's place on a table type's waiting list.
type RegistrationStatus string

const (
	RegistrationStatusWaiting   RegistrationStatus = "waiting"
	RegistrationStatusCalled    RegistrationStatus = "called"
	RegistrationStatusSeated    RegistrationStatus = "seated"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
	RegistrationStatusExpired   RegistrationStatus = "expired"
)

var validRegistrationStatuses = []RegistrationStatus{
	RegistrationStatusWaiting,
	RegistrationStatusCalled,
	RegistrationStatusSeated,
	RegistrationStatusCancelled,
	RegistrationStatusExpired,
}

var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationStatusWaiting: {RegistrationStatusCalled, RegistrationStatusSeated, RegistrationStatusCancelled, RegistrationStatusExpired},
	RegistrationStatusCalled:  {RegistrationStatusSeated, RegistrationStatusCancelled, RegistrationStatusExpired},
}

// String implements fmt.Stringer.
func (r RegistrationStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RegistrationStatus.
func (r RegistrationStatus) IsValid() bool {
	for _, candidate := range validRegistrationStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor state.
func (r RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	for _, candidate := range registrationTransitions[r] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseRegistrationStatus converts raw input into a RegistrationStatus.
func ParseRegistrationStatus(value string) (RegistrationStatus, error) {
	for _, candidate := range validRegistrationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid registration status %q", value)
}
