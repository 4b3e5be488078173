package chat

import (
	"fmt"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/internal/cart"
	"github.com/ejidepharmacy/pharmabot-backend/internal/checkout"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/money"
)

const (
	emptyCartCheckout = "Your cart is empty. Add items first!\n\nExample: 'I want 2 paracetamol'"
	receiptStamp      = "January 02, 2006 03:04 PM"
)

var receiptRule = strings.Repeat("=", 35)

func cartSummary(c *cart.Cart) string {
	if c.IsEmpty() {
		return "🛒 Your cart is empty."
	}
	var b strings.Builder
	b.WriteString("🛒 *YOUR CART:*\n")
	for _, l := range c.Lines {
		fmt.Fprintf(&b, "• %s x%d = %s\n", inventory.DisplayName(l.DrugName), l.Quantity, money.Format(l.LineTotal))
	}
	fmt.Fprintf(&b, "\n💰 *TOTAL: %s*\n", money.Format(c.Total))
	b.WriteString("\nReady to checkout? Reply 'checkout'")
	return b.String()
}

func receiptText(r *checkout.Receipt, storeName string, paymentLines []string) string {
	var b strings.Builder
	b.WriteString("🧾 *ORDER SUMMARY*\n")
	fmt.Fprintf(&b, "Order ID: %s\n", r.OrderID)
	fmt.Fprintf(&b, "Date: %s\n", r.CreatedAt.Format(receiptStamp))
	b.WriteString(receiptRule + "\n\n")

	b.WriteString("📦 *ITEMS:*\n")
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "• %s\n", inventory.DisplayName(l.DrugName))
		fmt.Fprintf(&b, "  Qty: %d x %s = %s\n", l.Quantity, money.Format(l.UnitPrice), money.Format(l.LineTotal))
		if l.CourseDays > 0 {
			fmt.Fprintf(&b, "  📅 Treatment: %d days (%s)\n", l.CourseDays, l.DosageFrequency)
		}
		b.WriteString("\n")
	}

	b.WriteString(receiptRule + "\n")
	fmt.Fprintf(&b, "💰 *TOTAL: %s*\n\n", money.Format(r.Total))

	if len(paymentLines) > 0 {
		b.WriteString("💳 *PAYMENT DETAILS:*\n")
		b.WriteString(strings.Join(paymentLines, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("📍 *NEXT STEPS:*\n")
	b.WriteString("1. Transfer amount to account above\n")
	b.WriteString("2. Send screenshot of payment\n")
	b.WriteString("3. We'll confirm and prepare order\n")
	b.WriteString("4. Visit pharmacy or request delivery\n\n")

	if r.HasCourse {
		b.WriteString("💊 *MEDICATION REMINDERS:*\n")
		b.WriteString("You'll receive daily reminders to take your medication and health checkups after treatment. Stay healthy! 😊\n\n")
	}

	b.WriteString("⏰ Order valid for 24 hours\n")
	b.WriteString("📞 Reply 'help' for assistance\n\n")
	fmt.Fprintf(&b, "Thank you for choosing %s! 🏥", storeName)
	return b.String()
}

func inventoryUpdatedText(d *models.Drug) string {
	return fmt.Sprintf("✅ *Inventory Updated!*\n\nDrug: %s\nQty: %d\nPrice: %s\nCategory: %s",
		inventory.DisplayName(d.Name), d.Quantity, money.Format(d.Price), inventory.DisplayName(d.Category))
}

const inventoryUsage = "❌ Invalid format.\n\n" +
	"*Use:* add drug [name] [qty] [price] [category]\n" +
	"*Example:* add drug paracetamol 100 500 fever"

const adminHelp = `🔧 *ADMIN COMMANDS:*

📦 *Inventory:*
• add drug [name] [qty] [price] [category]
• inventory report / inventory analysis
• Upload CSV via the upload-inventory endpoint

📊 *Analytics:*
• analytics / predictive insights
• weekly report / weekly summary

💡 *Examples:*
• "analytics" - Get insights
• "inventory report" - Full stock analysis
• "weekly report" - Week summary
• "add drug paracetamol 100 500 fever"

📤 *CSV Upload:*
Send CSV file with columns:
drug_name,quantity,price,category,description,dosage_days,dosage_frequency`
