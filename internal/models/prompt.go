package models

import (
	"time"
)

// PromptKey identifies a stored system prompt
type PromptKey string

const (
	PromptBlogSimplified PromptKey = "BLOG_SIMPLIFIED"
	PromptBlogDetailed   PromptKey = "BLOG_DETAILED"
	PromptImage          PromptKey = "IMAGE"
)

// ValidPromptKeys defines the prompts an admin can edit
var ValidPromptKeys = map[PromptKey]bool{
	PromptBlogSimplified: true,
	PromptBlogDetailed:   true,
	PromptImage:          true,
}

// SystemPrompt is the instruction text sent ahead of a generation request
type SystemPrompt struct {
	Key       PromptKey `json:"key" db:"key"`
	Text      string    `json:"text" db:"text"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PromptInput is the body of PUT /api/admin/prompts/:key
type PromptInput struct {
	Text string `json:"text" validate:"required,max=20000"`
}

const blogJSONShape = `Respond with a single JSON object and nothing else, shaped as
{"title": string, "description": string, "tags": string (comma-separated), "content": {"blocks": [{"type": "header"|"paragraph"|"list"|"quote"|"code", "data": {...}}]}}.`

// DefaultPrompts are used when no row exists for a key
var DefaultPrompts = map[PromptKey]string{
	PromptBlogSimplified: "You are a technical writer for a personal portfolio blog. Write a short, approachable post of at least 3 content blocks.\n" + blogJSONShape,
	PromptBlogDetailed:   "You are a technical writer for a personal portfolio blog. Write an in-depth post with an introduction, several sections with headers, and a conclusion, using at least 6 content blocks.\n" + blogJSONShape,
	PromptImage:          "Generate a clean, modern blog banner illustration without any text for the following subject:",
}

// PromptKeyForMode returns the prompt key used for a generation mode
func PromptKeyForMode(mode GenerationMode) PromptKey {
	if mode == ModeDetailed {
		return PromptBlogDetailed
	}
	return PromptBlogSimplified
}
