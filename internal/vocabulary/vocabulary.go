// Package vocabulary holds the ordered noun and verb lists offered while
// annotating. Order drives the quick-select numbers, so every edit keeps it.
package vocabulary

import (
	"encoding/json"
	"strings"
)

// Kind names one of the two lists
type Kind string

const (
	Nouns Kind = "nouns"
	Verbs Kind = "verbs"
)

// ParseKind accepts "noun", "nouns", "verb" or "verbs"
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noun", "nouns":
		return Nouns, true
	case "verb", "verbs":
		return Verbs, true
	}
	return "", false
}

// List is an ordered list of unique terms
type List struct {
	terms []string
}

// NewList builds a list from terms, dropping blanks and repeats
func NewList(terms []string) *List {
	l := &List{terms: make([]string, 0, len(terms))}
	for _, t := range terms {
		l.Add(t)
	}
	return l
}

// Add appends term if it is non-empty and not present yet. Matching is exact
// and case-sensitive after trimming surrounding whitespace.
func (l *List) Add(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" || l.Index(term) >= 0 {
		return false
	}
	l.terms = append(l.terms, term)
	return true
}

// Remove deletes term, reporting whether it was present
func (l *List) Remove(term string) bool {
	i := l.Index(term)
	if i < 0 {
		return false
	}
	l.terms = append(l.terms[:i], l.terms[i+1:]...)
	return true
}

// MoveUp swaps term with its predecessor; the first term stays put
func (l *List) MoveUp(term string) bool {
	i := l.Index(term)
	if i <= 0 {
		return false
	}
	l.terms[i-1], l.terms[i] = l.terms[i], l.terms[i-1]
	return true
}

// MoveDown swaps term with its successor; the last term stays put
func (l *List) MoveDown(term string) bool {
	i := l.Index(term)
	if i < 0 || i == len(l.terms)-1 {
		return false
	}
	l.terms[i+1], l.terms[i] = l.terms[i], l.terms[i+1]
	return true
}

// Index returns the position of term, or -1
func (l *List) Index(term string) int {
	term = strings.TrimSpace(term)
	for i, t := range l.terms {
		if t == term {
			return i
		}
	}
	return -1
}

// Contains reports whether term is in the list
func (l *List) Contains(term string) bool {
	return l.Index(term) >= 0
}

// At returns the 1-based n-th term
func (l *List) At(n int) (string, bool) {
	if n < 1 || n > len(l.terms) {
		return "", false
	}
	return l.terms[n-1], true
}

// Len returns the number of terms
func (l *List) Len() int {
	return len(l.terms)
}

// Terms returns a copy of the terms in order
func (l *List) Terms() []string {
	return append([]string{}, l.terms...)
}

// Vocabulary pairs the noun and verb lists
type Vocabulary struct {
	nouns *List
	verbs *List
}

// New creates a vocabulary from two term lists
func New(nouns, verbs []string) *Vocabulary {
	return &Vocabulary{nouns: NewList(nouns), verbs: NewList(verbs)}
}

// Clone returns an independent copy
func (v *Vocabulary) Clone() *Vocabulary {
	return New(v.nouns.Terms(), v.verbs.Terms())
}

// List returns the list for kind
func (v *Vocabulary) List(kind Kind) *List {
	if kind == Verbs {
		return v.verbs
	}
	return v.nouns
}

// Nouns returns the noun list
func (v *Vocabulary) Nouns() *List { return v.nouns }

// Verbs returns the verb list
func (v *Vocabulary) Verbs() *List { return v.verbs }

// Empty reports whether both lists are empty
func (v *Vocabulary) Empty() bool {
	return v.nouns.Len() == 0 && v.verbs.Len() == 0
}

// QuickSelect resolves the number keys 1-9: while no noun is chosen the
// number picks a noun, afterwards it picks a verb. A number past the end of
// the list selects nothing.
func (v *Vocabulary) QuickSelect(n int, currentNoun string) (Kind, string, bool) {
	if strings.TrimSpace(currentNoun) == "" {
		term, ok := v.nouns.At(n)
		return Nouns, term, ok
	}
	term, ok := v.verbs.At(n)
	return Verbs, term, ok
}

// cache is the sidecar file layout
type cache struct {
	Nouns []string `json:"nouns"`
	Verbs []string `json:"verbs"`
}

// Serialize encodes both lists as {"nouns": [...], "verbs": [...]}
func (v *Vocabulary) Serialize() ([]byte, error) {
	return json.MarshalIndent(cache{Nouns: v.nouns.Terms(), Verbs: v.verbs.Terms()}, "", "  ")
}

// Deserialize decodes a sidecar. Corrupt data yields an empty vocabulary and
// the decode error, so callers can log it and carry on.
func Deserialize(data []byte) (*Vocabulary, error) {
	var c cache
	if err := json.Unmarshal(data, &c); err != nil {
		return New(nil, nil), err
	}
	return New(c.Nouns, c.Verbs), nil
}
