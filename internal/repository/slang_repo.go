package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/portfolio-blog-api/internal/database"
	"github.com/portfolio-blog-api/internal/models"
)

const slangColumns = `id, term, meaning, example, category, status, is_featured,
	submitted_by, approved_by, approved_at, created_at, updated_at`

// slangRepo is the concrete implementation of SlangRepository
type slangRepo struct {
	db *database.DB
}

// NewSlangRepo creates a new slang repository
func NewSlangRepo(db *database.DB) SlangRepository {
	return &slangRepo{db: db}
}

// Create inserts a new slang term
func (r *slangRepo) Create(ctx context.Context, t *models.SlangTerm) error {
	query := `
		INSERT INTO slang_terms (` + slangColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Term, t.Meaning, t.Example, t.Category, t.Status, t.IsFeatured,
		nullString(t.SubmittedBy), nullString(t.ApprovedBy), t.ApprovedAt,
		t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func scanSlang(row scanner) (*models.SlangTerm, error) {
	var t models.SlangTerm
	var submittedBy, approvedBy sql.NullString
	var approvedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.Term, &t.Meaning, &t.Example, &t.Category, &t.Status, &t.IsFeatured,
		&submittedBy, &approvedBy, &approvedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.SubmittedBy = submittedBy.String
	t.ApprovedBy = approvedBy.String
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	return &t, nil
}

// GetByID retrieves a slang term by ID
func (r *slangRepo) GetByID(ctx context.Context, id string) (*models.SlangTerm, error) {
	t, err := scanSlang(r.db.QueryRowContext(ctx, `SELECT `+slangColumns+` FROM slang_terms WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// TermExists checks if a lowercased term is already in the dictionary
func (r *slangRepo) TermExists(ctx context.Context, term string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM slang_terms WHERE term = $1)", term).Scan(&exists)
	return exists, err
}

// List returns one page of terms matching filter and the total match count
func (r *slangRepo) List(ctx context.Context, filter models.SlangFilter) ([]*models.SlangTerm, int, error) {
	var conds []string
	var args []interface{}
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Featured != nil {
		conds = append(conds, "is_featured = "+arg(*filter.Featured))
	}
	if filter.Query != "" {
		p := arg(ContainsPattern(filter.Query)) + ` ESCAPE '\'`
		conds = append(conds, "(term ILIKE "+p+" OR meaning ILIKE "+p+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM slang_terms"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + slangColumns + ` FROM slang_terms` + where + ` ORDER BY is_featured DESC, term`
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	terms := []*models.SlangTerm{}
	for rows.Next() {
		t, err := scanSlang(rows)
		if err != nil {
			return nil, 0, err
		}
		terms = append(terms, t)
	}
	return terms, total, rows.Err()
}

// Update writes the editable text columns. Moderation state is changed only
// through SetStatus and SetFeatured.
func (r *slangRepo) Update(ctx context.Context, t *models.SlangTerm) error {
	query := `
		UPDATE slang_terms SET
			term = $1, meaning = $2, example = $3, category = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		t.Term, t.Meaning, t.Example, t.Category, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	return found(result)
}

// SetStatus moves a term to status and records who approved it
func (r *slangRepo) SetStatus(ctx context.Context, id string, status models.SlangStatus, approvedBy string, approvedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE slang_terms SET status = $1, approved_by = $2, approved_at = $3, updated_at = NOW()
		WHERE id = $4
	`, status, nullString(approvedBy), approvedAt, id)
	if err != nil {
		return err
	}
	return found(result)
}

// SetFeatured toggles is_featured without touching status
func (r *slangRepo) SetFeatured(ctx context.Context, id string, featured bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE slang_terms SET is_featured = $1, updated_at = NOW() WHERE id = $2`, featured, id)
	if err != nil {
		return err
	}
	return found(result)
}

// Delete removes a slang term
func (r *slangRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM slang_terms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of slang terms
func (r *slangRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM slang_terms").Scan(&count)
	return count, err
}

// StreamAll streams all slang terms for export
func (r *slangRepo) StreamAll(ctx context.Context, callback func(*models.SlangTerm) error) error {
	rows, err := r.db.QueryContext(ctx, `SELECT `+slangColumns+` FROM slang_terms ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanSlang(rows)
		if err != nil {
			return err
		}
		if err := callback(t); err != nil {
			return err
		}
	}
	return rows.Err()
}
