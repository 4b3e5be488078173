package responder

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/ejidepharmacy/pharmabot-backend/internal/inventory"
)

// fallbackInput is everything a rule may look at.
type fallbackInput struct {
	message   string
	inventory []string
	hasCart   bool
}

type rule struct {
	name   string
	match  func(in fallbackInput) bool
	handle func(in fallbackInput) string
}

type purpose struct {
	keyword string
	usedFor string
}

// Checked in order; the first keyword found in the message wins.
var drugPurposes = []purpose{
	{"paracetamol", "fever and pain"},
	{"ibuprofen", "pain and inflammation"},
	{"amoxicillin", "bacterial infections"},
	{"chloroquine", "malaria"},
	{"artemether", "malaria"},
	{"coartem", "malaria"},
	{"vitamin", "health supplements"},
	{"cough", "cough and cold"},
}

type condition struct {
	keyword string
	drugs   []string
}

var conditions = []condition{
	{"malaria", []string{"chloroquine", "artemether", "coartem"}},
	{"fever", []string{"paracetamol", "ibuprofen"}},
	{"pain", []string{"paracetamol", "ibuprofen"}},
	{"headache", []string{"paracetamol", "ibuprofen"}},
	{"cold", []string{"cough syrup", "vitamin c"}},
	{"cough", []string{"cough syrup"}},
}

var (
	greetingWords = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "greetings", "hola"}
	priceWords    = []string{"price", "cost", "how much", "expensive"}
	stockWords    = []string{"available", "in stock", "have", "sell", "stock"}
	cartWords     = []string{"cart", "basket", "added", "items"}
	checkoutWords = []string{"checkout", "pay", "payment", "order", "buy now"}
	medicalWords  = []string{"sick", "ill", "symptom", "diagnose", "what should i take", "treatment"}
)

// Fallback is the rule-based last stage. It reads nothing but the prompt and
// always produces a reply.
type Fallback struct {
	storeName string
	rules     []rule
}

func NewFallback(storeName string) *Fallback {
	f := &Fallback{storeName: storeName}
	f.rules = []rule{
		{name: "greeting", match: func(in fallbackInput) bool { return containsWord(in.message, greetingWords...) }, handle: f.greeting},
		{name: "named_drug", match: func(in fallbackInput) bool { _, ok := namedDrug(in.message); return ok }, handle: namedDrugReply},
		{name: "condition", match: func(in fallbackInput) bool { _, _, ok := conditionMatch(in); return ok }, handle: conditionReply},
		{name: "price", match: func(in fallbackInput) bool { return containsWord(in.message, priceWords...) }, handle: priceReply},
		{name: "availability", match: func(in fallbackInput) bool { return containsWord(in.message, stockWords...) }, handle: availabilityReply},
		{name: "cart", match: func(in fallbackInput) bool { return containsWord(in.message, cartWords...) }, handle: cartReply},
		{name: "checkout", match: func(in fallbackInput) bool { return containsWord(in.message, checkoutWords...) }, handle: checkoutReply},
		{name: "medical", match: func(in fallbackInput) bool { return containsWord(in.message, medicalWords...) }, handle: medicalReply},
	}
	return f
}

func (f *Fallback) Name() string { return "fallback" }

func (f *Fallback) Attempt(_ context.Context, p Prompt) (string, error) {
	return f.Reply(p), nil
}

// Reply runs the rules in priority order and falls back to the help text.
func (f *Fallback) Reply(p Prompt) string {
	in := fallbackInput{
		message: strings.ToLower(strings.TrimSpace(p.Message)),
		hasCart: strings.Contains(p.Context, cartHeader),
	}
	for _, line := range strings.Split(section(p.Context, inventoryHeader), "\n") {
		if line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-")); line != "" {
			in.inventory = append(in.inventory, line)
		}
	}

	for _, r := range f.rules {
		if r.match(in) {
			return r.handle(in)
		}
	}
	return helpReply()
}

func (f *Fallback) greeting(fallbackInput) string {
	return fmt.Sprintf("Hello! Welcome to %s! 😊\n\n", f.storeName) +
		"I can help you:\n" +
		"• Find medications and check prices\n" +
		"• Add items to cart: 'I want [qty] [drug]'\n" +
		"• Answer general pharmacy questions\n\n" +
		"What are you looking for today?"
}

func namedDrug(message string) (purpose, bool) {
	for _, p := range drugPurposes {
		if strings.Contains(message, p.keyword) {
			return p, true
		}
	}
	return purpose{}, false
}

func namedDrugReply(in fallbackInput) string {
	p, _ := namedDrug(in.message)
	name := inventory.DisplayName(p.keyword)
	if line, ok := stockedLine(in.inventory, p.keyword); ok {
		return fmt.Sprintf("Yes! We have %s 💊\n\n%s\n\nUsed for %s. To order:\nReply: 'I want [quantity] %s'", name, line, p.usedFor, p.keyword)
	}
	return fmt.Sprintf("Sorry, %s is currently out of stock. 😔\n\nWe have other options for %s. Would you like recommendations?", name, p.usedFor)
}

// conditionMatch finds the first condition in the message with at least one
// suggested drug in stock.
func conditionMatch(in fallbackInput) (string, []string, bool) {
	for _, c := range conditions {
		if !containsWord(in.message, c.keyword) {
			continue
		}
		available := []string{}
		for _, drug := range c.drugs {
			if line, ok := stockedLine(in.inventory, drug); ok {
				available = append(available, line)
			}
		}
		if len(available) > 0 {
			return c.keyword, available, true
		}
	}
	return "", nil, false
}

func conditionReply(in fallbackInput) string {
	keyword, available, _ := conditionMatch(in)
	var b strings.Builder
	fmt.Fprintf(&b, "For %s, we have:\n\n", keyword)
	for i, line := range available {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	b.WriteString("\nTo order, say: 'I want [qty] [drug name]' 🛒")
	return b.String()
}

func priceReply(fallbackInput) string {
	return "I can check prices for you! 💰\n\nWhich medication? Just ask:\n'How much is paracetamol?'"
}

func availabilityReply(fallbackInput) string {
	return "Let me check our inventory! 📦\n\nWhat medication do you need?\nYou can ask about specific drugs or conditions."
}

func cartReply(in fallbackInput) string {
	if in.hasCart {
		return "Your cart is ready! 🛒\n\nTo add more: 'I want [qty] [drug]'\nTo checkout: Reply 'checkout'"
	}
	return "Your cart is empty. 🛒\n\nTo add items, say:\n'I want 2 paracetamol'\n'Add 3 ibuprofen'"
}

func checkoutReply(in fallbackInput) string {
	if in.hasCart {
		return "Great! To complete your order:\nReply 'checkout' and I'll send payment details."
	}
	return "Your cart is empty. Add items first! 🛒\n\nExample: 'I want 2 paracetamol'"
}

func medicalReply(fallbackInput) string {
	return "I understand you're not feeling well. 🏥\n\n" +
		"I can show you available medications, but for medical advice, please consult our pharmacist or a doctor.\n\n" +
		"Visit us or call to speak with a professional. Your health matters! 😊"
}

func helpReply() string {
	return "I'm here to help! 🏥\n\n" +
		"You can:\n" +
		"• Ask about medications: 'Do you have paracetamol?'\n" +
		"• Check prices: 'How much is ibuprofen?'\n" +
		"• Add to cart: 'I want 2 paracetamol'\n" +
		"• Ask about conditions: 'What do you have for malaria?'\n\n" +
		"What would you like to know?"
}

// stockedLine returns the inventory line mentioning drug when it has stock.
func stockedLine(lines []string, drug string) (string, bool) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, drug) {
			continue
		}
		if strings.Contains(lower, ": 0 units") {
			return "", false
		}
		return line, true
	}
	return "", false
}

// containsWord reports whether any keyword appears in text starting at a word
// boundary, so "hi" matches "hi there" but not "which".
func containsWord(text string, keywords ...string) bool {
	for _, kw := range keywords {
		for start := 0; start < len(text); {
			idx := strings.Index(text[start:], kw)
			if idx < 0 {
				break
			}
			pos := start + idx
			if pos == 0 || !isWordByte(text[pos-1]) {
				return true
			}
			start = pos + 1
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b < 0x80 && (unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)))
}
