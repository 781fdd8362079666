package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/portfolio-blog-api/internal/database"
	"github.com/portfolio-blog-api/internal/models"
)

const blogSelect = `
	SELECT b.id, b.title, b.slug, b.description, b.content, b.banner, b.tags, b.status,
		b.approved, b.views, b.author_id, COALESCE(u.name, ''), b.version,
		b.created_at, b.updated_at, b.published_at
	FROM blogs b
	LEFT JOIN users u ON u.id = b.author_id
`

// blogRepo is the concrete implementation of BlogRepository
type blogRepo struct {
	db *database.DB
}

// NewBlogRepo creates a new blog repository
func NewBlogRepo(db *database.DB) BlogRepository {
	return &blogRepo{db: db}
}

// Create inserts a new blog
func (r *blogRepo) Create(ctx context.Context, blog *models.Blog) error {
	query := `
		INSERT INTO blogs (id, title, slug, description, content, banner, tags, status,
			approved, views, author_id, version, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		blog.ID, blog.Title, blog.Slug, blog.Description, nullJSON(blog.Content),
		blog.Banner, blog.Tags, blog.Status, blog.Approved, blog.Views, blog.AuthorID,
		blog.Version, blog.CreatedAt, blog.UpdatedAt, blog.PublishedAt,
	)
	return err
}

func scanBlog(row scanner) (*models.Blog, error) {
	var blog models.Blog
	var content []byte
	var publishedAt sql.NullTime

	err := row.Scan(
		&blog.ID, &blog.Title, &blog.Slug, &blog.Description, &content, &blog.Banner,
		&blog.Tags, &blog.Status, &blog.Approved, &blog.Views, &blog.AuthorID,
		&blog.AuthorName, &blog.Version, &blog.CreatedAt, &blog.UpdatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(content) > 0 {
		blog.Content = content
	}
	if publishedAt.Valid {
		blog.PublishedAt = &publishedAt.Time
	}
	blog.Categories = []models.Category{}
	return &blog, nil
}

func (r *blogRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.Blog, error) {
	blog, err := scanBlog(r.db.QueryRowContext(ctx, blogSelect+" WHERE "+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadCategories(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}
	return blog, nil
}

// GetByID retrieves a blog by ID
func (r *blogRepo) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	return r.getOne(ctx, "b.id = $1", id)
}

// GetBySlug retrieves a blog by slug
func (r *blogRepo) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return r.getOne(ctx, "b.slug = $1", slug)
}

// GetByIDs retrieves blogs in the order of ids, skipping missing ones
func (r *blogRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Blog, error) {
	if len(ids) == 0 {
		return []*models.Blog{}, nil
	}

	rows, err := r.db.QueryContext(ctx, blogSelect+" WHERE b.id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.Blog, len(ids))
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		byID[blog.ID] = blog
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	blogs := make([]*models.Blog, 0, len(byID))
	for _, id := range ids {
		if blog, ok := byID[id]; ok {
			blogs = append(blogs, blog)
		}
	}
	return blogs, r.loadCategories(ctx, blogs)
}

// SlugExists checks if a blog with the given slug exists
func (r *blogRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM blogs WHERE slug = $1)", slug).Scan(&exists)
	return exists, err
}

// Update writes the non-nil fields of upd
func (r *blogRepo) Update(ctx context.Context, id string, upd BlogUpdate, expectedVersion *int) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Slug != nil {
		set("slug", *upd.Slug)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Content != nil {
		set("content", nullJSON(upd.Content))
	}
	if upd.Banner != nil {
		set("banner", *upd.Banner)
	}
	if upd.Tags != nil {
		set("tags", *upd.Tags)
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.Approved != nil {
		set("approved", *upd.Approved)
	}
	if upd.AuthorID != nil {
		set("author_id", *upd.AuthorID)
	}
	if upd.MarkPublished {
		sets = append(sets, "published_at = COALESCE(published_at, NOW())")
	}
	sets = append(sets, "version = version + 1", "updated_at = NOW()")

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if expectedVersion != nil {
		args = append(args, *expectedVersion)
		where += fmt.Sprintf(" AND version = $%d", len(args))
	}

	query := fmt.Sprintf("UPDATE blogs SET %s WHERE %s", strings.Join(sets, ", "), where)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	ok, err := affected(result)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if expectedVersion != nil {
		var exists bool
		if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM blogs WHERE id = $1)", id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrVersionConflict
		}
	}
	return ErrNotFound
}

// Delete removes a blog; its category links cascade
func (r *blogRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM blogs WHERE id = $1", id)
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

// List returns one page of blogs matching filter and the total match count
func (r *blogRepo) List(ctx context.Context, filter models.BlogFilter) ([]*models.Blog, int, error) {
	var conds []string
	var args []interface{}
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Public {
		conds = append(conds, "b.status = 'published' AND b.approved")
	} else if filter.Status != "" {
		conds = append(conds, "b.status = "+arg(filter.Status))
	}
	if filter.AuthorID != "" {
		conds = append(conds, "b.author_id = "+arg(filter.AuthorID))
	}
	if filter.Category != "" {
		p := arg(strings.ToLower(filter.Category))
		conds = append(conds, `EXISTS (SELECT 1 FROM blog_categories bc JOIN categories c ON c.id = bc.category_id
			WHERE bc.blog_id = b.id AND (c.name = `+p+` OR c.slug = `+p+`))`)
	}
	if filter.Query != "" {
		p := arg(ContainsPattern(filter.Query)) + ` ESCAPE '\'`
		conds = append(conds, "(b.title ILIKE "+p+" OR b.description ILIKE "+p+" OR b.tags ILIKE "+p+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM blogs b" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY b.updated_at DESC"
	if filter.Public {
		order = " ORDER BY b.published_at DESC NULLS LAST, b.created_at DESC"
	}
	query := blogSelect + where + order
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	blogs := []*models.Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadCategories(ctx, blogs); err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

// IncrementViews bumps the view counter without touching version
func (r *blogRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE blogs SET views = views + 1 WHERE id = $1", id)
	return err
}

// SetCategories replaces a blog's category links
func (r *blogRepo) SetCategories(ctx context.Context, blogID string, categoryIDs []string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM blog_categories WHERE blog_id = $1", blogID); err != nil {
			return err
		}
		for _, categoryID := range categoryIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO blog_categories (blog_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				blogID, categoryID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// loadCategories fills Categories for every blog with one query
func (r *blogRepo) loadCategories(ctx context.Context, blogs []*models.Blog) error {
	if len(blogs) == 0 {
		return nil
	}

	ids := make([]string, len(blogs))
	byID := make(map[string]*models.Blog, len(blogs))
	for i, blog := range blogs {
		ids[i] = blog.ID
		byID[blog.ID] = blog
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT bc.blog_id, c.id, c.name, c.slug, c.created_at
		FROM blog_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.blog_id = ANY($1)
		ORDER BY c.name
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var blogID string
		var c models.Category
		if err := rows.Scan(&blogID, &c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return err
		}
		if blog, ok := byID[blogID]; ok {
			blog.Categories = append(blog.Categories, c)
		}
	}
	return rows.Err()
}

// Count returns the total number of blogs
func (r *blogRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blogs").Scan(&count)
	return count, err
}

// StreamAll streams all blogs for export. Categories are not loaded.
func (r *blogRepo) StreamAll(ctx context.Context, callback func(*models.Blog) error) error {
	rows, err := r.db.QueryContext(ctx, blogSelect+" ORDER BY b.created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return err
		}
		if err := callback(blog); err != nil {
			return err
		}
	}

	return rows.Err()
}
