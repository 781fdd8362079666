package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/portfolio-blog-api/internal/content"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/validation"
)

// ErrInvalidBlog is returned when the generated JSON does not describe a usable blog
var ErrInvalidBlog = errors.New("generated blog is invalid")

// GeneratedBlog is the validated result of a BLOG job
type GeneratedBlog struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Tags        string                `json:"tags"`
	Content     content.Document      `json:"content"`
	Mode        models.GenerationMode `json:"mode"`
	Provider    string                `json:"provider,omitempty"`
	Fixups      []string              `json:"fixups,omitempty"`
}

type rawBlog struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tags        json.RawMessage `json:"tags"`
	Content     json.RawMessage `json:"content"`
	Blocks      json.RawMessage `json:"blocks"`
}

// DecodeBlog parses model output into a blog, repairing malformed JSON with
// at most maxFixups steps, and checks the block count required by mode
func DecodeBlog(raw string, mode models.GenerationMode, maxFixups int) (*GeneratedBlog, error) {
	var rb rawBlog
	applied, err := ParseJSON(raw, maxFixups, &rb)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(rb.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrInvalidBlog)
	}

	body := rb.Content
	if len(body) == 0 || string(body) == "null" {
		body = rb.Blocks
	}
	if !hasBlocks(body) {
		return nil, fmt.Errorf("%w: content has no blocks array", ErrInvalidBlog)
	}

	doc := content.Normalize(body)
	if len(doc.Blocks) < mode.MinBlocks() {
		return nil, fmt.Errorf("%w: %d content blocks, need at least %d", ErrInvalidBlog, len(doc.Blocks), mode.MinBlocks())
	}

	return &GeneratedBlog{
		Title:       title,
		Description: strings.TrimSpace(rb.Description),
		Tags:        decodeTags(rb.Tags),
		Content:     doc,
		Mode:        mode,
		Fixups:      applied,
	}, nil
}

// hasBlocks accepts {"blocks": [...]} or a bare block array
func hasBlocks(raw json.RawMessage) bool {
	var obj struct {
		Blocks []json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Blocks != nil {
		return true
	}
	var arr []json.RawMessage
	return json.Unmarshal(raw, &arr) == nil && arr != nil
}

// decodeTags accepts a comma-separated string or an array of strings
func decodeTags(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return validation.NormalizeTags(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return validation.NormalizeTags(strings.Join(list, ","))
	}
	return ""
}
