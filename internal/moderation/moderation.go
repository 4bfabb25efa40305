// Package moderation is the first-line content gate applied before routing.
package moderation

import "strings"

// DefaultDenylist is the set of terms rejected by IsAcceptable.
var DefaultDenylist = []string{"palabrota1", "palabrota2", "palabrota3"}

// Moderator rejects text containing any denylisted term.
type Moderator struct {
	terms []string
}

// New builds a Moderator over terms. Terms are lowercased; blank ones are
// dropped.
func New(terms ...string) *Moderator {
	m := &Moderator{}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			m.terms = append(m.terms, t)
		}
	}
	return m
}

// IsAcceptable reports whether text contains none of the denylisted terms,
// compared case-insensitively as substrings.
func (m *Moderator) IsAcceptable(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range m.terms {
		if strings.Contains(lower, t) {
			return false
		}
	}
	return true
}

var defaultModerator = New(DefaultDenylist...)

// IsAcceptable checks text against DefaultDenylist.
func IsAcceptable(text string) bool {
	return defaultModerator.IsAcceptable(text)
}
