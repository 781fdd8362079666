package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonWordRegex    = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	hyphenRunRegex  = regexp.MustCompile(`-+`)
	slugRegex       = regexp.MustCompile(`^[a-z0-9_]+(?:-[a-z0-9_]+)*$`)
)

// Slugify derives a URL slug from a title: lowercase, non-word characters
// removed, whitespace turned into hyphens, repeated hyphens collapsed.
// "Hello, World!" becomes "hello-world".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, "-")
	s = hyphenRunRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithSuffix returns the n-th alternative of a taken slug, starting at 2
func WithSuffix(slug string, n int) string {
	if n < 2 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n)
}

// IsValidSlug reports whether s is already in slug form
func IsValidSlug(s string) bool {
	return slugRegex.MatchString(s)
}

// NormalizeName lowercases and trims a category or slang term
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTags trims, de-duplicates and re-joins a comma-separated tag list
func NormalizeTags(tags string) string {
	seen := make(map[string]bool)
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return strings.Join(out, ", ")
}
