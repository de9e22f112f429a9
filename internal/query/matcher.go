package query

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Matcher holds registered patterns ordered by descending priority and
// resolves a phrase to the first pattern whose regex accepts it.
type Matcher struct {
	mu       sync.RWMutex
	patterns []*Pattern
}

// NewMatcher returns a Matcher with the given patterns registered in order.
// It fails on the first pattern AddPattern rejects.
func NewMatcher(patterns ...*Pattern) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		if err := m.AddPattern(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddPattern validates p and registers it. Ties in priority keep
// registration order.
func (m *Matcher) AddPattern(p *Pattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validatePattern(p, m.patterns); err != nil {
		return err
	}

	m.patterns = append(m.patterns, p)
	m.sortLocked()

	zap.L().Debug("query: pattern registered",
		zap.String("pattern", p.ID),
		zap.Int("priority", p.Priority),
	)
	return nil
}

// RemovePattern unregisters the pattern with the given id and reports
// whether it was present.
func (m *Matcher) RemovePattern(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.patterns {
		if p.ID != id {
			continue
		}
		m.patterns = append(m.patterns[:i:i], m.patterns[i+1:]...)
		m.sortLocked()
		zap.L().Debug("query: pattern removed", zap.String("pattern", id))
		return true
	}
	return false
}

// Patterns returns the registered patterns in match order.
func (m *Matcher) Patterns() []*Pattern {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Pattern, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Pattern returns the registered pattern with the given id.
func (m *Matcher) Pattern(id string) (*Pattern, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.patterns {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Match returns the highest-priority pattern accepting the trimmed phrase.
// The first hit wins; later candidates are never considered.
func (m *Matcher) Match(phrase string) MatchResult {
	text := strings.TrimSpace(phrase)
	if text == "" {
		return MatchResult{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.patterns {
		loc := p.Regex.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		return MatchResult{
			Matched:    true,
			Pattern:    p,
			Params:     extractParams(text, loc, p.Extractors),
			Confidence: 1,
		}
	}
	return MatchResult{}
}

func (m *Matcher) sortLocked() {
	sort.SliceStable(m.patterns, func(i, j int) bool {
		return m.patterns[i].Priority > m.patterns[j].Priority
	})
}

func validatePattern(p *Pattern, registered []*Pattern) error {
	if p == nil {
		return &ValidationError{Fields: []string{"pattern"}}
	}

	verr := &ValidationError{PatternID: p.ID}
	if strings.TrimSpace(p.ID) == "" {
		verr.Fields = append(verr.Fields, "id")
	}
	if strings.TrimSpace(p.Name) == "" {
		verr.Fields = append(verr.Fields, "name")
	}
	if p.Regex == nil {
		verr.Fields = append(verr.Fields, "regex")
	}
	if p.Filters == nil {
		verr.Fields = append(verr.Fields, "filters")
	}
	if p.Sorts == nil {
		verr.Fields = append(verr.Fields, "sorts")
	}

	groups := -1
	if p.Regex != nil {
		groups = p.Regex.NumSubexp()
	}
	for i, e := range p.Extractors {
		if strings.TrimSpace(e.Name) == "" {
			verr.Fields = append(verr.Fields, fieldName("extractors", i, "name"))
		}
		if !e.Type.valid() {
			verr.Fields = append(verr.Fields, fieldName("extractors", i, "type"))
		}
		if e.Group < 0 || (groups >= 0 && e.Group > groups) {
			verr.Fields = append(verr.Fields, fieldName("extractors", i, "group"))
		}
		if !e.Normalize.valid() {
			verr.Fields = append(verr.Fields, fieldName("extractors", i, "normalize"))
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}

	// Go carries regex flags inline, so String() covers source and flags.
	// A reused id is reported the same way.
	for _, r := range registered {
		if r.ID == p.ID || r.Regex.String() == p.Regex.String() {
			verr.Conflicts = append(verr.Conflicts, r.ID)
		}
	}
	if len(verr.Conflicts) > 0 {
		return verr
	}
	return nil
}

func fieldName(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}
