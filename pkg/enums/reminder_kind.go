package enums

import "fmt"

// ReminderKind identifies which adherence message a purchase is due.
type ReminderKind string

const (
	ReminderKindDaily      ReminderKind = "daily"
	ReminderKindCompletion ReminderKind = "completion"
	ReminderKindCheckup    ReminderKind = "checkup"
)

var validReminderKinds = []ReminderKind{
	ReminderKindDaily,
	ReminderKindCompletion,
	ReminderKindCheckup,
}

// String implements fmt.Stringer.
func (k ReminderKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ReminderKind.
func (k ReminderKind) IsValid() bool {
	for _, candidate := range validReminderKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsTerminal reports whether emitting this kind completes the purchase.
func (k ReminderKind) IsTerminal() bool {
	return k == ReminderKindCheckup
}

// ParseReminderKind converts raw input into a ReminderKind.
func ParseReminderKind(value string) (ReminderKind, error) {
	for _, candidate := range validReminderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reminder kind %q", value)
}
