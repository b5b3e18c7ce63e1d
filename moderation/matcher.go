package moderation

import (
	"sort"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// PhraseMatcher finds whole-word phrases in free text with a single Aho-Corasick pass.
// Text and phrases are lowercased and every run of non alphanumeric runes collapses to one space,
// so "Fire-risk assessment" matches the phrase "fire risk assessment".
type PhraseMatcher struct {
	matcher *goahocorasick.Machine
}

// NewPhraseMatcher builds the automaton. Empty phrases are ignored.
func NewPhraseMatcher(phrases []string) (*PhraseMatcher, error) {
	normalized := lo.Uniq(lo.FilterMap(phrases, func(p string, _ int) (string, bool) {
		n := normalizePhrase(p)
		return n, n != ""
	}))
	if len(normalized) == 0 {
		return &PhraseMatcher{}, nil
	}
	sort.Strings(normalized)

	patterns := lo.Map(normalized, func(p string, _ int) []rune {
		return []rune(" " + p + " ")
	})
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &PhraseMatcher{matcher: m}, nil
}

func MustPhraseMatcher(phrases []string) *PhraseMatcher {
	m, err := NewPhraseMatcher(phrases)
	if err != nil {
		panic(err)
	}
	return m
}

// Find returns the distinct phrases present in text, in order of first appearance.
func (m *PhraseMatcher) Find(text string) []string {
	spans := m.Spans(text)
	if len(spans) == 0 {
		return nil
	}
	return lo.Uniq(lo.Map(spans, func(s Span, _ int) string { return s.Phrase }))
}

func (m *PhraseMatcher) Contains(text string) bool {
	return len(m.Spans(text)) > 0
}

// Span is one phrase occurrence. Start and End are rune offsets into the original text,
// End exclusive, so the span covers the first to the last letter of the phrase.
type Span struct {
	Phrase string
	Start  int
	End    int
}

// Spans returns every occurrence, overlapping ones included, ordered by position.
func (m *PhraseMatcher) Spans(text string) []Span {
	if m == nil || m.matcher == nil {
		return nil
	}
	norm, origIdx := mapText(text)
	if len(norm) == 0 {
		return nil
	}
	padded := make([]rune, 0, len(norm)+2)
	padded = append(append(append(padded, ' '), norm...), ' ')
	terms := m.matcher.MultiPatternSearch(padded, false)
	if len(terms) == 0 {
		return nil
	}
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Pos < terms[j].Pos })

	// A pattern is " phrase " over the padded text, so its first letter sits at Pos in norm.
	return lo.Map(terms, func(t *goahocorasick.Term, _ int) Span {
		first, last := t.Pos, t.Pos+len(t.Word)-3
		return Span{
			Phrase: strings.TrimSpace(string(t.Word)),
			Start:  origIdx[first],
			End:    origIdx[last] + 1,
		}
	})
}

// normalizePhrase lowercases and collapses separators to single spaces.
// Apostrophes are dropped so "don't" and "dont" compare equal.
func normalizePhrase(input string) string {
	norm, _ := mapText(input)
	return string(norm)
}

// mapText normalizes like normalizePhrase and records, for each kept rune, its index in the input.
// Inserted separators map to -1.
func mapText(input string) ([]rune, []int) {
	runes := []rune(input)
	norm := make([]rune, 0, len(runes))
	origIdx := make([]int, 0, len(runes))
	pendingSpace := false
	for i, r := range runes {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && len(norm) > 0 {
				norm = append(norm, ' ')
				origIdx = append(origIdx, -1)
			}
			pendingSpace = false
			norm = append(norm, unicode.ToLower(r))
			origIdx = append(origIdx, i)
		default:
			pendingSpace = true
		}
	}
	return norm, origIdx
}
