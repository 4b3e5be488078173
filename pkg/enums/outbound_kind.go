package enums

import "fmt"

// OutboundKind tags messages handed to the delivery queue.
type OutboundKind string

const (
	OutboundKindReminder     OutboundKind = "reminder"
	OutboundKindWeeklyReport OutboundKind = "weekly_report"
	OutboundKindAdminDigest  OutboundKind = "admin_digest"
)

var validOutboundKinds = []OutboundKind{
	OutboundKindReminder,
	OutboundKindWeeklyReport,
	OutboundKindAdminDigest,
}

// String implements fmt.Stringer.
func (k OutboundKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known OutboundKind.
func (k OutboundKind) IsValid() bool {
	for _, candidate := range validOutboundKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseOutboundKind converts raw input into an OutboundKind.
func ParseOutboundKind(value string) (OutboundKind, error) {
	for _, candidate := range validOutboundKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbound kind %q", value)
}
