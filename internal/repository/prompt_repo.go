package repository

import (
	"context"
	"database/sql"

	"github.com/portfolio-blog-api/internal/database"
	"github.com/portfolio-blog-api/internal/models"
)

// promptRepo is the concrete implementation of PromptRepository
type promptRepo struct {
	db *database.DB
}

// NewPromptRepo creates a new system prompt repository
func NewPromptRepo(db *database.DB) PromptRepository {
	return &promptRepo{db: db}
}

// Get retrieves a stored prompt, or nil when the key has no row
func (r *promptRepo) Get(ctx context.Context, key models.PromptKey) (*models.SystemPrompt, error) {
	var p models.SystemPrompt
	err := r.db.QueryRowContext(ctx,
		`SELECT key, text, updated_at FROM system_prompts WHERE key = $1`, key,
	).Scan(&p.Key, &p.Text, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every stored prompt
func (r *promptRepo) List(ctx context.Context) ([]*models.SystemPrompt, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, text, updated_at FROM system_prompts ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []*models.SystemPrompt
	for rows.Next() {
		var p models.SystemPrompt
		if err := rows.Scan(&p.Key, &p.Text, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prompts = append(prompts, &p)
	}
	return prompts, rows.Err()
}

// Upsert stores the prompt text for its key
func (r *promptRepo) Upsert(ctx context.Context, p *models.SystemPrompt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_prompts (key, text, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET text = EXCLUDED.text, updated_at = EXCLUDED.updated_at
	`, p.Key, p.Text, p.UpdatedAt)
	return err
}
