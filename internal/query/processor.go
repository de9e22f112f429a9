package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/findings-cli/internal/model"
)

// maxSuggestions bounds the example phrases offered for unmatched input.
const maxSuggestions = 8

// Processor runs the full phrase pipeline: match, then execute.
type Processor struct {
	matcher  *Matcher
	executor *Executor
}

// NewProcessor wires a matcher and an executor together.
func NewProcessor(m *Matcher, e *Executor) *Processor {
	return &Processor{matcher: m, executor: e}
}

// Matcher returns the processor's matcher.
func (p *Processor) Matcher() *Matcher {
	return p.matcher
}

// Process interprets phrase and executes it. Phrases no pattern understands
// produce a no_match response carrying example phrases.
func (p *Processor) Process(ctx context.Context, phrase string) *Response {
	res := p.matcher.Match(phrase)
	if !res.Matched {
		zap.L().Debug("query: no pattern matched", zap.String("phrase", phrase))
		return &Response{
			Type:     TypeNoMatch,
			Answer:   FormatNoMatch(strings.TrimSpace(phrase), p.Suggestions()),
			Findings: []model.Finding{},
		}
	}

	zap.L().Debug("query: pattern matched",
		zap.String("phrase", phrase),
		zap.String("pattern", res.Pattern.ID),
		zap.Any("params", res.Params),
	)
	return p.executor.Execute(ctx, res.Pattern, res.Params)
}

// Suggestions returns one example phrase per registered pattern, in match
// order, up to a fixed bound.
func (p *Processor) Suggestions() []string {
	var out []string
	for _, pat := range p.matcher.Patterns() {
		if len(pat.Examples) == 0 {
			continue
		}
		out = append(out, pat.Examples[0])
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
