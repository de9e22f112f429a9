package query

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// extractParams reads every extractor's value out of a submatch index slice
// as returned by FindStringSubmatchIndex. Extractors whose groups did not
// participate in the match contribute nothing.
func extractParams(text string, loc []int, extractors []Extractor) Params {
	params := make(Params, len(extractors))
	for _, e := range extractors {
		raw, ok := captureWithFallback(text, loc, e.Group)
		if !ok {
			continue
		}
		params[e.Name] = convert(normalize(raw, e.Normalize), e.Type)
	}
	return params
}

// captureWithFallback returns the text of group g, or of group g+1 when g is
// empty. Alternation branches such as `(?:a (\d+)|(\d+) b)` supply one value
// through adjacent groups and rely on this.
func captureWithFallback(text string, loc []int, g int) (string, bool) {
	v, ok := capture(text, loc, g)
	if ok && v != "" {
		return v, true
	}
	if next, nextOK := capture(text, loc, g+1); nextOK && (next != "" || !ok) {
		return next, true
	}
	return v, ok
}

func capture(text string, loc []int, g int) (string, bool) {
	if g < 0 || 2*g+1 >= len(loc) {
		return "", false
	}
	start, end := loc[2*g], loc[2*g+1]
	if start < 0 || end < 0 {
		return "", false
	}
	return text[start:end], true
}

// normalize applies n to s. Capitalize upper-cases the first character and
// lower-cases the whole remainder, it is not per-word title case.
func normalize(s string, n Normalizer) string {
	switch n {
	case NormalizeCapitalize:
		return capitalize(s)
	case NormalizeUppercase:
		return strings.ToUpper(s)
	case NormalizeLowercase:
		return strings.ToLower(s)
	case NormalizeTrim:
		return strings.TrimSpace(s)
	default:
		return s
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func convert(s string, t ParamType) any {
	switch t {
	case TypeNumber:
		return parseNumber(s)
	case TypeBoolean:
		return parseBool(s)
	default:
		return s
	}
}

// parseNumber converts s to an int when integral and a float64 otherwise.
// Text that is not numeric converts to 0.
func parseNumber(s string) any {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
		return int(f)
	}
	return f
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}
