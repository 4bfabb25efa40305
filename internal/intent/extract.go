package intent

import (
	"strconv"
	"strings"
)

// ItemPreposition separates the item name from the rest of an order or
// nutrition request ("quiero pedir 2 de Soda").
const ItemPreposition = "de"

// ExtractQuantity returns the first whitespace-separated token made only of
// ASCII digits, scanning left to right. It returns 1 when there is none, or
// when that token is zero or does not fit in an int.
func ExtractQuantity(text string) int {
	for _, tok := range strings.Fields(text) {
		if !isDigits(tok) {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 {
			return 1
		}
		return n
	}
	return 1
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// ExtractItemName returns the tokens following the last token equal to
// preposition (ignoring case), joined by single spaces. It returns "" when
// the preposition does not occur or nothing follows it.
//
// Item names that contain the preposition themselves ("Pastel de Chocolate")
// are cut at their own preposition; callers get "Chocolate".
func ExtractItemName(text, preposition string) string {
	tokens := strings.Fields(text)
	last := -1
	for i, tok := range tokens {
		if strings.EqualFold(tok, preposition) {
			last = i
		}
	}
	if last < 0 {
		return ""
	}
	return strings.Join(tokens[last+1:], " ")
}
