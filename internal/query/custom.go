package query

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/findings-cli/internal/model"
)

// PatternFile is the YAML document holding declarative custom patterns.
type PatternFile struct {
	Patterns []PatternSpec `yaml:"patterns"`
}

// PatternSpec declares a pattern without code. Filters take their value from
// a named parameter (Param) or a literal (Value).
type PatternSpec struct {
	ID         string                `yaml:"id"`
	Name       string                `yaml:"name"`
	Category   Category              `yaml:"category"`
	Priority   int                   `yaml:"priority"`
	Regex      string                `yaml:"regex"`
	Extractors []Extractor           `yaml:"extractors"`
	Filters    []FilterSpec          `yaml:"filters"`
	Sorts      []model.SortDirective `yaml:"sorts"`
	Examples   []string              `yaml:"examples"`
}

// FilterSpec is a filter template inside a PatternSpec.
type FilterSpec struct {
	Field string   `yaml:"field"`
	Op    model.Op `yaml:"op"`
	Param string   `yaml:"param"`
	Value any      `yaml:"value"`
}

// LoadPatternFile reads and compiles custom patterns from a YAML file.
func LoadPatternFile(path string) ([]*Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "query: read pattern file %s", path)
	}
	return ParsePatterns(data)
}

// ParsePatterns compiles custom patterns from YAML. Registration-time checks
// (conflicts, extractor groups) are left to Matcher.AddPattern.
func ParsePatterns(data []byte) ([]*Pattern, error) {
	var file PatternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "query: parse pattern file")
	}

	out := make([]*Pattern, 0, len(file.Patterns))
	for _, spec := range file.Patterns {
		p, err := spec.Compile()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Compile turns the spec into a Pattern.
func (s PatternSpec) Compile() (*Pattern, error) {
	if s.Regex == "" {
		return nil, &ValidationError{PatternID: s.ID, Fields: []string{"regex"}}
	}
	re, err := regexp.Compile(s.Regex)
	if err != nil {
		return nil, eris.Wrapf(err, "query: compile regex for pattern %q", s.ID)
	}

	verr := &ValidationError{PatternID: s.ID}
	for i, f := range s.Filters {
		if f.Field == "" {
			verr.Fields = append(verr.Fields, fieldName("filters", i, "field"))
		}
		if !f.Op.Valid() {
			verr.Fields = append(verr.Fields, fieldName("filters", i, "op"))
		}
	}
	for i, d := range s.Sorts {
		if d.Field == "" {
			verr.Fields = append(verr.Fields, fieldName("sorts", i, "field"))
		}
		if d.Direction != model.Asc && d.Direction != model.Desc {
			verr.Fields = append(verr.Fields, fieldName("sorts", i, "direction"))
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	category := s.Category
	if category == "" {
		category = CategoryComposite
	}

	parts := make([]filterPart, len(s.Filters))
	for i, f := range s.Filters {
		if f.Param != "" {
			parts[i] = paramFilter(f.Field, f.Op, f.Param)
		} else {
			parts[i] = fixed(f.Field, f.Op, f.Value)
		}
	}

	return &Pattern{
		ID:         s.ID,
		Name:       s.Name,
		Category:   category,
		Priority:   s.Priority,
		Regex:      re,
		Extractors: s.Extractors,
		Filters:    filters(parts...),
		Sorts:      sortBy(s.Sorts...),
		Examples:   s.Examples,
	}, nil
}

func paramFilter(field string, op model.Op, param string) filterPart {
	return func(p Params) (model.Filter, bool) {
		v, ok := p[param]
		if !ok {
			return model.Filter{}, false
		}
		return model.Filter{Field: field, Op: op, Value: v}, true
	}
}
