// Package intent spots "add to cart" requests such as "I want 2 paracetamol"
// in free text.
package intent

import (
	"strconv"
	"strings"
)

// CartAdd is a parsed request to put Quantity units of Drug in the cart.
type CartAdd struct {
	Drug     string
	Quantity int
}

// Parse scans the words left to right and returns the first integer that is
// directly followed by a word contained in one of the drug names. Drug names
// are tried in the given order and the first containing one wins. Any number
// qualifies, so "2 days of paracetamol" style false positives are possible.
func Parse(message string, drugNames []string) (CartAdd, bool) {
	words := strings.Fields(strings.ToLower(message))
	for i := 0; i+1 < len(words); i++ {
		qty, ok := parseCount(words[i])
		if !ok {
			continue
		}
		next := words[i+1]
		for _, name := range drugNames {
			if strings.Contains(strings.ToLower(name), next) {
				return CartAdd{Drug: name, Quantity: qty}, true
			}
		}
	}
	return CartAdd{}, false
}

func parseCount(word string) (int, bool) {
	for _, r := range word {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(word)
	if err != nil {
		return 0, false
	}
	return n, true
}
