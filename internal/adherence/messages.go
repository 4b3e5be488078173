package adherence

import (
	"fmt"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/enums"
)

// Message renders the customer-facing text for a reminder.
func Message(kind enums.ReminderKind, drug, dosage string) string {
	name := inventory.DisplayName(drug)
	if strings.TrimSpace(dosage) == "" {
		dosage = "as prescribed"
	}

	var b strings.Builder
	switch kind {
	case enums.ReminderKindDaily:
		b.WriteString("💊 *MEDICATION REMINDER*\n\n")
		fmt.Fprintf(&b, "Time to take your %s!\n", name)
		fmt.Fprintf(&b, "Dosage: %s\n\n", dosage)
		b.WriteString("✅ Reply 'took it' to confirm\n")
		b.WriteString("❌ Reply 'missed' if you missed a dose\n\n")
		b.WriteString("Stay consistent for best results! 💪")
	case enums.ReminderKindCompletion:
		b.WriteString("🎉 *TREATMENT MILESTONE*\n\n")
		fmt.Fprintf(&b, "You've completed your %s treatment course!\n\n", name)
		b.WriteString("How are you feeling?\n")
		b.WriteString("• Much better 😊\n")
		b.WriteString("• Some improvement 🤔\n")
		b.WriteString("• No change 😟\n\n")
		b.WriteString("Your feedback helps us serve you better!")
	default:
		b.WriteString("🏥 *HEALTH CHECK-IN*\n\n")
		fmt.Fprintf(&b, "It's been %d days since you completed %s.\n\n", CheckupDelay, name)
		b.WriteString("Quick checkup:\n")
		b.WriteString("• Are your symptoms gone?\n")
		b.WriteString("• Any side effects?\n")
		b.WriteString("• Need any other medication?\n\n")
		b.WriteString("We're here to help! 😊")
	}
	return b.String()
}
