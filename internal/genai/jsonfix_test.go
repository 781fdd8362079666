package genai

import (
	"errors"
	"strings"
	"testing"

	"github.com/portfolio-blog-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantFix   []string
	}{
		{
			name:      "valid input needs no fix-ups",
			raw:       `{"title": "Go"}`,
			wantTitle: "Go",
		},
		{
			name:      "code fence",
			raw:       "```json\n{\"title\": \"Go\"}\n```",
			wantTitle: "Go",
			wantFix:   []string{"strip code fences"},
		},
		{
			name:      "prose around object",
			raw:       "Sure! Here is your blog:\n{\"title\": \"Go\"}\nEnjoy.",
			wantTitle: "Go",
			wantFix:   []string{"extract object"},
		},
		{
			name:      "trailing comma",
			raw:       `{"title": "Go", "tags": ["a", "b",],}`,
			wantTitle: "Go",
			wantFix:   []string{"remove trailing commas"},
		},
		{
			name:      "smart quotes",
			raw:       `{“title”: “Go”}`,
			wantTitle: "Go",
			wantFix:   []string{"replace smart quotes"},
		},
		{
			name:      "raw newline in string",
			raw:       "{\"title\": \"Go\nrocks\"}",
			wantTitle: "Go\nrocks",
			wantFix:   []string{"escape control characters"},
		},
		{
			name:      "unquoted keys",
			raw:       `{title: "Go"}`,
			wantTitle: "Go",
			wantFix:   []string{"quote keys"},
		},
		{
			name:      "single quotes",
			raw:       `{'title': 'Go'}`,
			wantTitle: "Go",
			wantFix:   []string{"convert single quotes"},
		},
		{
			name:      "fence and trailing comma",
			raw:       "```\n{\"title\": \"Go\",}\n```",
			wantTitle: "Go",
			wantFix:   []string{"strip code fences", "remove trailing commas"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				Title string `json:"title"`
			}
			applied, err := ParseJSON(tt.raw, 8, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, out.Title)
			assert.Equal(t, tt.wantFix, applied)
		})
	}
}

func TestParseJSON_Bounded(t *testing.T) {
	var out map[string]interface{}

	_, err := ParseJSON("```json\n{\"title\": \"Go\",}\n```", 1, &out)
	assert.Error(t, err, "two fix-ups are needed but only one is allowed")

	applied, err := ParseJSON("this is not json at all", 8, &out)
	assert.Error(t, err)
	assert.Empty(t, applied)
}

func TestEscapeControlChars(t *testing.T) {
	in := "{\"a\": \"line1\nline2\tx\", \"b\": \"already \\n escaped\"}\n"
	out := escapeControlChars(in)
	assert.Equal(t, "{\"a\": \"line1\\nline2\\tx\", \"b\": \"already \\n escaped\"}\n", out)
}

func blocksJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = `{"type": "paragraph", "data": {"text": "para"}}`
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestDecodeBlog(t *testing.T) {
	t.Run("simplified with three blocks", func(t *testing.T) {
		raw := `{"title": " Learning Go ", "description": "Intro", "tags": ["go", "Go", "backend"], "content": {"blocks": ` + blocksJSON(3) + `}}`
		blog, err := DecodeBlog(raw, models.ModeSimplified, 8)
		require.NoError(t, err)
		assert.Equal(t, "Learning Go", blog.Title)
		assert.Equal(t, "go, backend", blog.Tags)
		assert.Len(t, blog.Content.Blocks, 3)
		assert.Equal(t, models.ModeSimplified, blog.Mode)
	})

	t.Run("detailed needs six blocks", func(t *testing.T) {
		raw := `{"title": "Go", "content": {"blocks": ` + blocksJSON(3) + `}}`
		_, err := DecodeBlog(raw, models.ModeDetailed, 8)
		assert.True(t, errors.Is(err, ErrInvalidBlog))
	})

	t.Run("missing title", func(t *testing.T) {
		raw := `{"content": {"blocks": ` + blocksJSON(3) + `}}`
		_, err := DecodeBlog(raw, models.ModeSimplified, 8)
		assert.True(t, errors.Is(err, ErrInvalidBlog))
	})

	t.Run("content without blocks", func(t *testing.T) {
		raw := `{"title": "Go", "content": "just some text"}`
		_, err := DecodeBlog(raw, models.ModeSimplified, 8)
		assert.True(t, errors.Is(err, ErrInvalidBlog))
	})

	t.Run("bare block array and string tags", func(t *testing.T) {
		raw := "```json\n{\"title\": \"Go\", \"tags\": \"a, b\", \"content\": " + blocksJSON(3) + ",}\n```"
		blog, err := DecodeBlog(raw, models.ModeSimplified, 8)
		require.NoError(t, err)
		assert.Equal(t, "a, b", blog.Tags)
		assert.Len(t, blog.Content.Blocks, 3)
		assert.NotEmpty(t, blog.Fixups)
	})

	t.Run("typeless blocks do not count", func(t *testing.T) {
		raw := `{"title": "Go", "content": {"blocks": [{"data": {}}, {"data": {}}, {"type": "paragraph", "data": {"text": "x"}}]}}`
		_, err := DecodeBlog(raw, models.ModeSimplified, 8)
		assert.True(t, errors.Is(err, ErrInvalidBlog))
	})
}
