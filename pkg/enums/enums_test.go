package enums

import "testing"

func TestParseReminderKind(t *testing.T) {
	for _, kind := range validReminderKinds {
		got, err := ParseReminderKind(kind.String())
		if err != nil || got != kind {
			t.Fatalf("expected %q to round trip, got %q err=%v", kind, got, err)
		}
	}
	if _, err := ParseReminderKind("weekly"); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
	if ReminderKind("nope").IsValid() {
		t.Fatal("unexpected valid kind")
	}
}

func TestReminderKindTerminal(t *testing.T) {
	if !ReminderKindCheckup.IsTerminal() {
		t.Fatal("checkup completes the course")
	}
	if ReminderKindDaily.IsTerminal() || ReminderKindCompletion.IsTerminal() {
		t.Fatal("only checkup is terminal")
	}
}

func TestParseOutboundKind(t *testing.T) {
	if got, err := ParseOutboundKind("weekly_report"); err != nil || got != OutboundKindWeeklyReport {
		t.Fatalf("unexpected parse result %q err=%v", got, err)
	}
	if _, err := ParseOutboundKind("sms"); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}
