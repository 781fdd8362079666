package validation

import (
	"testing"

	"github.com/portfolio-blog-api/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuation stripped", "Hello, World!", "hello-world"},
		{"repeated spaces collapse", "Go   is    fun", "go-is-fun"},
		{"existing hyphens collapse", "pre -- post", "pre-post"},
		{"leading and trailing trimmed", "  -Draft- ", "draft"},
		{"underscores kept", "snake_case title", "snake_case-title"},
		{"digits kept", "Top 10 Tips", "top-10-tips"},
		{"only punctuation", "?!", ""},
		{"default draft title", models.DefaultDraftTitle, "untitled-draft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		if Slugify("Hello, World!") != "hello-world" {
			t.Fatal("Slugify is not deterministic")
		}
	}
}

func TestWithSuffix(t *testing.T) {
	if got := WithSuffix("hello-world", 1); got != "hello-world" {
		t.Errorf("Expected unchanged slug, got %q", got)
	}
	if got := WithSuffix("hello-world", 2); got != "hello-world-2" {
		t.Errorf("Expected hello-world-2, got %q", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"hello", "hello-world", "top-10-tips"}
	invalid := []string{"", "Hello", "hello--world", "-hello", "hello world"}

	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags(" go, Web ,go,, api ")
	if got != "go, Web, api" {
		t.Errorf("Unexpected tags: %q", got)
	}
}

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{
			name:  "valid registration",
			input: &models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"},
		},
		{
			name:       "short password",
			input:      &models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "12345"},
			wantFields: []string{"password"},
		},
		{
			name:       "missing name and bad email",
			input:      &models.RegisterRequest{Email: "not-an-email", Password: "secret1"},
			wantFields: []string{"name", "email"},
		},
		{
			name:       "blog with invalid status",
			input:      &models.BlogInput{Title: "T", Status: "live"},
			wantFields: []string{"status"},
		},
		{
			name:       "blog with blank category",
			input:      &models.BlogInput{Title: "T", Categories: []string{"go", ""}},
			wantFields: []string{"categories[1]"},
		},
		{
			name:       "unknown slang action",
			input:      &models.SlangActionRequest{Action: "promote"},
			wantFields: []string{"action"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Struct(tt.input)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %+v", len(tt.wantFields), len(errs), errs)
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("Expected error on %q, got %q", field, errs[i].Field)
				}
			}
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	if !IsValidUUID("550e8400-e29b-41d4-a716-446655440000") {
		t.Error("Expected valid UUID")
	}
	if IsValidUUID("not-a-uuid") {
		t.Error("Expected invalid UUID")
	}
}
