package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/rs/zerolog"
)

const flushEvery = 100

var (
	userColumns  = []string{"id", "name", "email", "role", "created_at", "updated_at"}
	blogColumns  = []string{"id", "title", "slug", "description", "status", "approved", "views", "author_id", "tags", "version", "created_at", "updated_at", "published_at"}
	slangColumns = []string{"id", "term", "meaning", "example", "category", "status", "is_featured", "submitted_by", "approved_by", "approved_at", "created_at", "updated_at"}
)

// exportService streams admin backups of users, blogs and slang terms
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// recordWriter writes one export format
type recordWriter interface {
	begin()
	write(v interface{}, row []string) error
	end() error
}

// StreamResource streams every row of resource in format (json, ndjson or csv)
func (s *exportService) StreamResource(ctx context.Context, actor policy.Actor, w http.ResponseWriter, resource, format string) error {
	if !policy.Can(actor, policy.ActionExport, "") {
		return ErrNotAuthorized
	}
	if format == "" {
		format = "ndjson"
	}

	var columns []string
	switch resource {
	case "users":
		columns = userColumns
	case "blogs":
		columns = blogColumns
	case "slang":
		columns = slangColumns
	default:
		return invalidField("resource", "must be one of: users blogs slang")
	}

	rw, err := newRecordWriter(w, resource, format, columns)
	if err != nil {
		return err
	}

	s.log.Info().Str("resource", resource).Str("format", format).Msg("Starting export")
	rw.begin()

	count := 0
	emit := func(v interface{}, row []string) error {
		count++
		return rw.write(v, row)
	}

	switch resource {
	case "users":
		err = s.repos.User.StreamAll(ctx, func(u *models.User) error {
			return emit(u, []string{u.ID, u.Name, u.Email, string(u.Role), ts(u.CreatedAt), ts(u.UpdatedAt)})
		})
	case "blogs":
		err = s.repos.Blog.StreamAll(ctx, func(b *models.Blog) error {
			return emit(b, []string{
				b.ID, b.Title, b.Slug, b.Description, string(b.Status),
				strconv.FormatBool(b.Approved), strconv.FormatInt(b.Views, 10), b.AuthorID, b.Tags,
				strconv.Itoa(b.Version), ts(b.CreatedAt), ts(b.UpdatedAt), tsPtr(b.PublishedAt),
			})
		})
	case "slang":
		err = s.repos.Slang.StreamAll(ctx, func(t *models.SlangTerm) error {
			return emit(t, []string{
				t.ID, t.Term, t.Meaning, t.Example, t.Category, string(t.Status),
				strconv.FormatBool(t.IsFeatured), t.SubmittedBy, t.ApprovedBy, tsPtr(t.ApprovedAt),
				ts(t.CreatedAt), ts(t.UpdatedAt),
			})
		})
	}

	if endErr := rw.end(); err == nil {
		err = endErr
	}
	s.log.Info().Str("resource", resource).Int("count", count).Msg("Export completed")
	return err
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "users":
		return s.repos.User.Count(ctx)
	case "blogs":
		return s.repos.Blog.Count(ctx)
	case "slang":
		return s.repos.Slang.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}

func newRecordWriter(w http.ResponseWriter, resource, format string, columns []string) (recordWriter, error) {
	filename := fmt.Sprintf("%s-%s.%s", resource, time.Now().UTC().Format("20060102"), format)
	flusher, _ := w.(http.Flusher)

	switch format {
	case "ndjson":
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		return &ndjsonWriter{w: w, flusher: flusher}, nil
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		return &jsonArrayWriter{w: w, flusher: flusher}, nil
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		return &csvWriter{w: csv.NewWriter(w), columns: columns, flusher: flusher}, nil
	default:
		return nil, invalidField("format", "must be one of: json ndjson csv")
	}
}

type ndjsonWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	count   int
}

func (n *ndjsonWriter) begin() {}

func (n *ndjsonWriter) write(v interface{}, _ []string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := n.w.Write(append(data, '\n')); err != nil {
		return err
	}
	n.count++
	// Flush every 100 records for streaming
	if n.count%flushEvery == 0 && n.flusher != nil {
		n.flusher.Flush()
	}
	return nil
}

func (n *ndjsonWriter) end() error { return nil }

type jsonArrayWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	count   int
}

func (j *jsonArrayWriter) begin() {
	j.w.Write([]byte("["))
}

func (j *jsonArrayWriter) write(v interface{}, _ []string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if j.count > 0 {
		j.w.Write([]byte(","))
	}
	if _, err := j.w.Write(data); err != nil {
		return err
	}
	j.count++
	if j.count%flushEvery == 0 && j.flusher != nil {
		j.flusher.Flush()
	}
	return nil
}

func (j *jsonArrayWriter) end() error {
	_, err := j.w.Write([]byte("]"))
	return err
}

type csvWriter struct {
	w       *csv.Writer
	columns []string
	flusher http.Flusher
	count   int
}

func (c *csvWriter) begin() {
	c.w.Write(c.columns)
}

func (c *csvWriter) write(_ interface{}, row []string) error {
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.count++
	if c.count%flushEvery == 0 {
		c.w.Flush()
		if c.flusher != nil {
			c.flusher.Flush()
		}
	}
	return nil
}

func (c *csvWriter) end() error {
	c.w.Flush()
	return c.w.Error()
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func tsPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return ts(*t)
}
