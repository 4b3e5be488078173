package responder

import (
	"strings"
	"unicode/utf8"
)

// NotUnderstood replaces replies that are empty after cleaning.
const NotUnderstood = "I'm here to help! Could you rephrase your question? 😊"

const minReplyLength = 5

var artifacts = []string{
	"YOUR RESPONSE (be helpful, check inventory, and be conversational):",
	"CUSTOMER'S CURRENT MESSAGE:",
	customerHeader,
	"Assistant:",
	"Response:",
	"AI:",
}

// Sanitize strips prompt labels echoed back by a model, trims the text and
// collapses runs of blank lines.
func Sanitize(reply string) string {
	for _, a := range artifacts {
		reply = strings.ReplaceAll(reply, a, "")
	}
	reply = strings.TrimSpace(reply)
	for strings.Contains(reply, "\n\n\n") {
		reply = strings.ReplaceAll(reply, "\n\n\n", "\n\n")
	}
	if utf8.RuneCountInString(reply) < minReplyLength {
		return NotUnderstood
	}
	return reply
}
