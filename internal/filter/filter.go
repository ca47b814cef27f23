// Package filter implements bad-word detection and masking for user text.
package filter

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a matched range of the scanned text, as byte offsets.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Word  string `json:"word"`
}

// Result is the outcome of scanning a piece of text.
type Result struct {
	Flagged bool
	Masked  string
	Matches []Span
}

// BadWordSet is an immutable snapshot of lowercase bad words.
type BadWordSet struct {
	words []string // longest first
}

// NewBadWordSet builds a snapshot from words. Entries are trimmed and
// lowercased; empty entries and duplicates are dropped.
func NewBadWordSet(words []string) *BadWordSet {
	seen := make(map[string]struct{}, len(words))
	set := &BadWordSet{words: make([]string, 0, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		set.words = append(set.words, w)
	}
	sort.SliceStable(set.words, func(i, j int) bool {
		return len(set.words[i]) > len(set.words[j])
	})
	return set
}

// Len returns the number of words in the set.
func (s *BadWordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns a copy of the words in the set.
func (s *BadWordSet) Words() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Scan matches text against set case-insensitively. At each position the
// longest matching word wins and scanning resumes after it, so matches never
// overlap. Matched spans are masked with one asterisk per rune; everything
// outside a span is returned byte for byte.
func Scan(text string, set *BadWordSet) Result {
	if set.Len() == 0 || text == "" {
		return Result{Masked: text}
	}

	var matches []Span
	for i := 0; i < len(text); {
		if end, word, ok := set.longestAt(text, i); ok {
			matches = append(matches, Span{Start: i, End: end, Word: word})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}

	if len(matches) == 0 {
		return Result{Masked: text}
	}
	return Result{Flagged: true, Masked: mask(text, matches), Matches: matches}
}

// Flagged reports whether text contains any word in set.
func Flagged(text string, set *BadWordSet) bool {
	return Scan(text, set).Flagged
}

func (s *BadWordSet) longestAt(text string, i int) (int, string, bool) {
	// words are sorted longest first, but byte length of the match in text
	// can differ from the word's, so compare every candidate.
	bestEnd, best := -1, ""
	for _, w := range s.words {
		end, ok := matchAt(text, i, w)
		if ok && end > bestEnd {
			bestEnd, best = end, w
		}
	}
	if bestEnd < 0 {
		return 0, "", false
	}
	return bestEnd, best, true
}

func matchAt(text string, i int, word string) (int, bool) {
	j := i
	for _, wr := range word {
		if j >= len(text) {
			return 0, false
		}
		tr, size := utf8.DecodeRuneInString(text[j:])
		if tr != wr && unicode.ToLower(tr) != wr {
			return 0, false
		}
		j += size
	}
	return j, true
}

func mask(text string, matches []Span) string {
	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, m := range matches {
		b.WriteString(text[prev:m.Start])
		b.WriteString(strings.Repeat("*", utf8.RuneCountInString(text[m.Start:m.End])))
		prev = m.End
	}
	b.WriteString(text[prev:])
	return b.String()
}
