package responder

import (
	"fmt"
	"strings"

	"github.com/ejidepharmacy/pharmabot-backend/internal/cart"
	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/db/models"
	"github.com/ejidepharmacy/pharmabot-backend/pkg/money"
)

// Context section headers. The fallback stage reads them back out of the
// formatted context.
const (
	inventoryHeader = "INVENTORY:"
	cartHeader      = "CUSTOMER'S CART:"
	purchasesHeader = "PREVIOUS PURCHASES:"
	historyHeader   = "RECENT MESSAGES:"
	customerHeader  = "CUSTOMER:"
)

const (
	inventoryLimit = 12
	purchaseLimit  = 2
	historyLimit   = 3
)

// Prompt is what every stage receives.
type Prompt struct {
	Message string
	Context string
}

// Snapshot is the data a reply may draw on. Inventory is expected in name
// order, purchases and history newest first. History excludes Message.
type Snapshot struct {
	Message   string
	Inventory []models.Drug
	Cart      *cart.Cart
	Purchases []models.Purchase
	History   []models.Conversation
}

// BuildPrompt formats the bounded context handed to the stages.
func BuildPrompt(s Snapshot) Prompt {
	sections := []string{}

	if len(s.Inventory) > 0 {
		var b strings.Builder
		b.WriteString(inventoryHeader)
		for i, d := range s.Inventory {
			if i == inventoryLimit {
				break
			}
			fmt.Fprintf(&b, "\n- %s: %d units @ %s", inventory.DisplayName(d.Name), d.Quantity, money.FormatWhole(d.Price))
		}
		sections = append(sections, b.String())
	}

	if !s.Cart.IsEmpty() {
		var b strings.Builder
		b.WriteString(cartHeader)
		for _, l := range s.Cart.Lines {
			fmt.Fprintf(&b, "\n- %s x%d = %s", inventory.DisplayName(l.DrugName), l.Quantity, money.FormatWhole(l.LineTotal))
		}
		fmt.Fprintf(&b, "\nTotal: %s", money.FormatWhole(s.Cart.Total))
		sections = append(sections, b.String())
	}

	if len(s.Purchases) > 0 {
		var b strings.Builder
		b.WriteString(purchasesHeader)
		for i, p := range s.Purchases {
			if i == purchaseLimit {
				break
			}
			fmt.Fprintf(&b, "\n- %s", inventory.DisplayName(p.DrugName))
		}
		sections = append(sections, b.String())
	}

	if len(s.History) > 0 {
		n := min(len(s.History), historyLimit)
		var b strings.Builder
		b.WriteString(historyHeader)
		for i := n - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "\n- %s", strings.TrimSpace(s.History[i].Message))
		}
		sections = append(sections, b.String())
	}

	sections = append(sections, customerHeader+" "+s.Message)
	return Prompt{Message: s.Message, Context: strings.Join(sections, "\n\n")}
}

// section returns the body of the block that starts with header, or "".
func section(context, header string) string {
	idx := strings.Index(context, header)
	if idx < 0 {
		return ""
	}
	body := context[idx+len(header):]
	if end := strings.Index(body, "\n\n"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// DefaultSystemPrompt is the business-rule directive sent to AI providers.
func DefaultSystemPrompt(storeName string, paymentLines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s's AI assistant. Be friendly, helpful, and concise.\n\n", storeName)
	b.WriteString("CORE RULES:\n")
	b.WriteString("- Check inventory before confirming availability\n")
	b.WriteString("- Mention price and stock when available\n")
	b.WriteString("- Be conversational but brief\n")
	b.WriteString("- Use emojis sparingly (💊 🏥 😊 🛒)\n")
	b.WriteString("- NEVER diagnose medical conditions\n")
	b.WriteString("- NEVER prescribe medications or dosages\n")
	b.WriteString("- Always refer medical questions to a pharmacist/doctor\n\n")
	b.WriteString("FEATURES YOU HELP WITH:\n")
	b.WriteString("1. Drug inquiries - Check stock and prices\n")
	b.WriteString("2. Shopping cart - Help add items: \"I want [qty] [drug]\"\n")
	b.WriteString("3. Checkout - Guide to payment when ready\n")
	b.WriteString("4. General pharmacy info\n")
	if len(paymentLines) > 0 {
		b.WriteString("\nPAYMENT INFO (share only when customer checks out):\n")
		b.WriteString(strings.Join(paymentLines, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("\nRemember: Be helpful, friendly, and professional. Keep responses natural and conversational.")
	return b.String()
}
