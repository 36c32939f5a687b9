package moderation

import (
	"context"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// WordList matches text against a fixed list of banned words using an
// Aho-Corasick automaton. Input and patterns are normalized the same way,
// so spacing, punctuation and common leet substitutions do not hide a match.
// A match only counts when it starts and ends on a word boundary of the
// original text.
type WordList struct {
	matcher *goahocorasick.Machine
}

// textMapping keeps, for every normalized rune, its index in the original text.
type textMapping struct {
	normalized []rune
	origIdx    []int
}

func NewWordList(words []string) (*WordList, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if norm := normalize(word).normalized; len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}
	if len(patterns) == 0 {
		return &WordList{}, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &WordList{matcher: m}, nil
}

func (w *WordList) Flagged(_ context.Context, text string) bool {
	if w.matcher == nil {
		return false
	}
	mapping := normalize(text)
	if len(mapping.normalized) == 0 {
		return false
	}

	orig := []rune(text)
	for _, term := range w.matcher.MultiPatternSearch(mapping.normalized, false) {
		start, end := term.Pos, term.Pos+len(term.Word)-1
		if start < 0 || end >= len(mapping.origIdx) {
			continue
		}
		if boundaryBefore(orig, mapping.origIdx[start]) && boundaryAfter(orig, mapping.origIdx[end]) {
			return true
		}
	}
	return false
}

func boundaryBefore(orig []rune, i int) bool {
	return i == 0 || !isWordRune(orig[i-1])
}

func boundaryAfter(orig []rune, i int) bool {
	return i == len(orig)-1 || !isWordRune(orig[i+1])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func normalize(s string) textMapping {
	orig := []rune(s)
	m := textMapping{
		normalized: make([]rune, 0, len(orig)),
		origIdx:    make([]int, 0, len(orig)),
	}
	for i, r := range orig {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		m.normalized = append(m.normalized, unicode.ToLower(r))
		m.origIdx = append(m.origIdx, i)
	}
	return m
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
