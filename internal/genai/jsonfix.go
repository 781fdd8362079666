package genai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fixup is one repair step applied to malformed model output
type fixup struct {
	name  string
	apply func(string) string
}

var (
	codeFenceRe     = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	missingCommaRe  = regexp.MustCompile(`([}\]"])\s*\n\s*([{"])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuotedRe  = regexp.MustCompile(`'((?:[^'\\\n]|\\.)*)'`)
	smartQuotes     = strings.NewReplacer("“", `"`, "”", `"`, "„", `"`, "‘", "'", "’", "'")
)

// fixups run in order; each one is kept for the following attempts
var fixups = []fixup{
	{"strip code fences", func(s string) string {
		if m := codeFenceRe.FindStringSubmatch(s); m != nil {
			return m[1]
		}
		return s
	}},
	{"extract object", func(s string) string {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start < 0 || end <= start {
			return s
		}
		return s[start : end+1]
	}},
	{"replace smart quotes", smartQuotes.Replace},
	{"escape control characters", escapeControlChars},
	{"remove trailing commas", func(s string) string {
		return trailingCommaRe.ReplaceAllString(s, "$1")
	}},
	{"insert missing commas", func(s string) string {
		return missingCommaRe.ReplaceAllString(s, "$1,\n$2")
	}},
	{"quote keys", func(s string) string {
		return unquotedKeyRe.ReplaceAllString(s, `$1"$2":`)
	}},
	{"convert single quotes", func(s string) string {
		return singleQuotedRe.ReplaceAllStringFunc(s, func(m string) string {
			inner := m[1 : len(m)-1]
			inner = strings.ReplaceAll(inner, `\'`, `'`)
			inner = strings.ReplaceAll(inner, `"`, `\"`)
			return `"` + inner + `"`
		})
	}},
}

// ParseJSON decodes raw into v, applying at most maxFixups repair steps to
// malformed input. It returns the names of the steps that were needed.
func ParseJSON(raw string, maxFixups int, v interface{}) ([]string, error) {
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil, nil
	}

	var applied []string
	current := raw
	for _, f := range fixups {
		if len(applied) >= maxFixups {
			break
		}
		next := f.apply(current)
		if next == current {
			continue
		}
		current = next
		applied = append(applied, f.name)

		if err = json.Unmarshal([]byte(current), v); err == nil {
			return applied, nil
		}
	}

	return applied, fmt.Errorf("malformed JSON after %d fix-ups: %w", len(applied), err)
}

// escapeControlChars escapes raw newlines, tabs and other control characters
// that appear inside string literals
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
			b.WriteRune(r)
		case inString && r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = !inString
			b.WriteRune(r)
		case inString && r == '\n':
			b.WriteString(`\n`)
		case inString && r == '\r':
			b.WriteString(`\r`)
		case inString && r == '\t':
			b.WriteString(`\t`)
		case inString && r < 0x20:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
