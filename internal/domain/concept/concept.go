// Package concept extracts candidate concepts from free text and detects
// coverage gaps between a query and a set of accepted documents.
package concept

import (
	"regexp"
	"strings"
)

var (
	doubleQuotedRegex = regexp.MustCompile(`"([^"]+)"`)
	singleQuotedRegex = regexp.MustCompile(`'([^']+)'`)
	properNounRegex   = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	acronymRegex      = regexp.MustCompile(`\b[A-Z]{2,}(?:-[A-Z]+)*\b`)
	hyphenatedRegex   = regexp.MustCompile(`\b\w+(?:-\w+)+\b`)
	plainTokenRegex   = regexp.MustCompile(`[a-z]{4,}`)
)

// Extractor pulls concepts out of free text. Pure and stateless apart from
// the stop-word set, which is replaceable.
type Extractor struct {
	stopWords map[string]struct{}
}

// NewExtractor creates an extractor with the default English stop-word list.
func NewExtractor() *Extractor {
	return &Extractor{stopWords: defaultStopWords}
}

// WithStopWords replaces the stop-word set and returns the extractor.
func (e *Extractor) WithStopWords(words []string) *Extractor {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	e.stopWords = set
	return e
}

// Extract returns an ordered, deduplicated list of lowercase concepts:
// quoted phrases, proper-noun runs, acronyms, hyphenated compounds, and
// significant plain tokens, in that priority order.
func (e *Extractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})

	add := func(c string) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			return
		}
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	for _, m := range doubleQuotedRegex.FindAllStringSubmatch(text, -1) {
		if len(m[1]) > 2 {
			add(m[1])
		}
	}
	for _, m := range singleQuotedRegex.FindAllStringSubmatch(text, -1) {
		if len(m[1]) > 2 {
			add(m[1])
		}
	}

	for _, m := range properNounRegex.FindAllString(text, -1) {
		if _, stop := e.stopWords[strings.ToLower(m)]; stop {
			continue
		}
		add(m)
	}

	for _, m := range acronymRegex.FindAllString(text, -1) {
		add(m)
	}

	for _, m := range hyphenatedRegex.FindAllString(text, -1) {
		if len(m) > 3 {
			add(m)
		}
	}

	for _, m := range plainTokenRegex.FindAllString(strings.ToLower(text), -1) {
		if _, stop := e.stopWords[m]; stop {
			continue
		}
		if _, verb := commonVerbs[m]; verb {
			continue
		}
		add(m)
	}

	return out
}

// IsStopWord reports whether the lowercased token is in the stop-word set.
func (e *Extractor) IsStopWord(token string) bool {
	_, ok := e.stopWords[strings.ToLower(token)]
	return ok
}

// FindGaps returns query concepts not covered by the covered set, in input
// order with duplicates removed. A concept counts as covered on an exact
// match or when either string contains the other as a substring. The
// substring rule can mark unrelated short concepts as covered; callers
// accept that in exchange for cheap partial matching.
func FindGaps(queryConcepts []string, covered Set) []string {
	var gaps []string
	seen := make(map[string]struct{})

	for _, qc := range queryConcepts {
		if _, dup := seen[qc]; dup {
			continue
		}
		seen[qc] = struct{}{}
		if !covered.Covers(qc) {
			gaps = append(gaps, qc)
		}
	}
	return gaps
}

// GapQuery concatenates the original query with the gap terms. A deliberately
// simple heuristic: no semantic rewriting happens here.
func GapQuery(original string, gaps []string) string {
	if len(gaps) == 0 {
		return original
	}
	return original + " " + strings.Join(gaps, " ")
}
