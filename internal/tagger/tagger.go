// Package tagger labels finding text with topic tags using a multi-pattern
// keyword automaton.
package tagger

import (
	"sort"
	"strings"

	ac "github.com/petar-dambovaliev/aho-corasick"
)

// DefaultKeywords is the built-in tag vocabulary, in English and Indonesian.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		"access":        {"password", "access control", "hak akses", "privilege", "user id", "otorisasi"},
		"fraud":         {"fraud", "kecurangan", "penyalahgunaan", "gratifikasi", "kickback"},
		"procurement":   {"tender", "lelang", "vendor", "purchase order", "kontrak", "pengadaan"},
		"financial":     {"invoice", "faktur", "pembayaran", "payment", "rekonsiliasi", "reconciliation", "kas"},
		"asset":         {"aset", "asset", "inventaris", "inventory", "stock opname"},
		"compliance":    {"sop", "regulasi", "regulation", "kebijakan", "policy", "peraturan"},
		"safety":        {"k3", "hse", "keselamatan", "safety", "kecelakaan"},
		"documentation": {"dokumen", "document", "arsip", "record keeping", "berita acara"},
	}
}

// Tagger finds tag keywords in text. A Tagger is immutable once built.
type Tagger struct {
	automaton   *ac.AhoCorasick
	patternTags [][]string // automaton pattern index -> tags
}

// New builds a Tagger from a tag -> phrases map. Phrases match ASCII
// case-insensitively on whole words; overlapping phrases resolve to the
// leftmost longest.
func New(keywords map[string][]string) *Tagger {
	index := make(map[string]int)
	var patterns []string
	var patternTags [][]string

	tags := make([]string, 0, len(keywords))
	for tag := range keywords {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		for _, phrase := range keywords[tag] {
			key := strings.ToLower(strings.TrimSpace(phrase))
			if key == "" {
				continue
			}
			i, ok := index[key]
			if !ok {
				i = len(patterns)
				index[key] = i
				patterns = append(patterns, key)
				patternTags = append(patternTags, nil)
			}
			patternTags[i] = append(patternTags[i], tag)
		}
	}

	t := &Tagger{patternTags: patternTags}
	if len(patterns) == 0 {
		return t
	}
	builder := ac.NewAhoCorasickBuilder(ac.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ac.LeftMostLongestMatch,
	})
	automaton := builder.Build(patterns)
	t.automaton = &automaton
	return t
}

// Tags returns the sorted, de-duplicated tags whose phrases occur in any of
// texts.
func (t *Tagger) Tags(texts ...string) []string {
	if t == nil || t.automaton == nil {
		return nil
	}
	seen := make(map[string]bool)
	for _, text := range texts {
		if text == "" {
			continue
		}
		for _, m := range t.automaton.FindAll(text) {
			for _, tag := range t.patternTags[m.Pattern()] {
				seen[tag] = true
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
