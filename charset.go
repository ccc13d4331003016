package epubfont

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CharSet is the set of characters a book's text uses.
// Order is irrelevant; Runes returns a sorted slice.
type CharSet map[rune]struct{}

// NewCharSet returns a set containing runes.
func NewCharSet(runes ...rune) CharSet {
	s := make(CharSet, len(runes))
	for _, r := range runes {
		s[r] = struct{}{}
	}
	return s
}

// Add inserts r into the set.
func (s CharSet) Add(r rune) {
	s[r] = struct{}{}
}

// Contains reports whether r is in the set.
func (s CharSet) Contains(r rune) bool {
	_, ok := s[r]
	return ok
}

// Len returns the number of characters in the set.
func (s CharSet) Len() int {
	return len(s)
}

// Union adds every character of other to s.
func (s CharSet) Union(other CharSet) {
	for r := range other {
		s[r] = struct{}{}
	}
}

// Runes returns the characters in ascending order.
func (s CharSet) Runes() []rune {
	runes := maps.Keys(s)
	slices.Sort(runes)
	return runes
}

func (s CharSet) String() string {
	var b strings.Builder
	for _, r := range s.Runes() {
		b.WriteRune(r)
	}
	return b.String()
}
