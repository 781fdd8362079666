package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-blog-api/internal/content"
	"github.com/portfolio-blog-api/internal/models"
	"github.com/portfolio-blog-api/internal/policy"
	"github.com/portfolio-blog-api/internal/repository"
	"github.com/portfolio-blog-api/internal/search"
	"github.com/portfolio-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	excerptLength   = 200
	maxSlugAttempts = 50
)

// blogService is the concrete implementation of BlogService
type blogService struct {
	blogs      repository.BlogRepository
	categories repository.CategoryRepository
	search     SearchIndex
	notifier   Notifier
	validator  *validation.Validator
	log        zerolog.Logger
}

func newBlogService(d Deps, v *validation.Validator) *blogService {
	return &blogService{
		blogs:      d.Repos.Blog,
		categories: d.Repos.Category,
		search:     d.Search,
		notifier:   d.Notifier,
		validator:  v,
		log:        d.Log.With().Str("service", "blog").Logger(),
	}
}

// Create stores a new blog. USER blogs always start as unapproved drafts;
// admin blogs are approved and keep the requested status.
func (s *blogService) Create(ctx context.Context, actor policy.Actor, input *models.BlogInput) (*models.Blog, error) {
	if !policy.Can(actor, policy.ActionCreateBlog, "") {
		return nil, ErrNotAuthorized
	}
	input.Title = strings.TrimSpace(input.Title)
	if errs := s.validator.Struct(input); len(errs) > 0 {
		return nil, invalidFields(errs)
	}
	slug := validation.Slugify(input.Title)
	if slug == "" {
		return nil, invalidField("title", "must contain at least one letter or digit")
	}

	now := time.Now().UTC()
	blog := &models.Blog{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Content:     normalizeContent(input.Content),
		Banner:      input.Banner,
		Tags:        validation.NormalizeTags(input.Tags),
		AuthorID:    actor.ID,
		AuthorName:  actor.Name,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if actor.IsAdmin() {
		blog.Approved = true
		blog.Status = input.Status
		if blog.Status == "" {
			blog.Status = models.BlogStatusDraft
		}
		if blog.Status == models.BlogStatusPublished {
			blog.PublishedAt = &now
		}
	} else {
		blog.Status = models.BlogStatusDraft
		blog.Approved = false
	}

	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, s.writeError(err, "Failed to create blog")
	}

	cats, err := s.setCategories(ctx, blog.ID, input.Categories)
	if err != nil {
		return nil, err
	}
	blog.Categories = cats

	s.afterWrite(blog, false, actor)
	s.log.Info().Str("blog_id", blog.ID).Str("status", string(blog.Status)).Msg("Blog created")
	return blog, nil
}

// Update replaces the editable fields of a blog. A USER edit sends the blog
// back to review as a draft.
func (s *blogService) Update(ctx context.Context, actor policy.Actor, id string, input *models.BlogInput) (*models.Blog, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.ActionEditBlog, existing.AuthorID) {
		return nil, ErrNotAuthorized
	}

	input.Title = strings.TrimSpace(input.Title)
	if errs := s.validator.Struct(input); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	upd := repository.BlogUpdate{
		Title:       &input.Title,
		Description: strPtr(strings.TrimSpace(input.Description)),
		Content:     normalizeContent(input.Content),
		Banner:      &input.Banner,
		Tags:        strPtr(validation.NormalizeTags(input.Tags)),
	}
	if upd.Content == nil {
		upd.Content = json.RawMessage("null")
	}
	if input.Title != existing.Title {
		slug := validation.Slugify(input.Title)
		if slug == "" {
			return nil, invalidField("title", "must contain at least one letter or digit")
		}
		upd.Slug = &slug
	}

	if actor.IsAdmin() {
		upd.Approved = boolPtr(true)
		if input.Status != "" {
			upd.Status = &input.Status
			upd.MarkPublished = input.Status == models.BlogStatusPublished
		}
	} else {
		upd.Status = statusPtr(models.BlogStatusDraft)
		upd.Approved = boolPtr(false)
	}

	if err := s.blogs.Update(ctx, id, upd, input.Version); err != nil {
		return nil, s.writeError(err, "Failed to update blog")
	}
	if input.Categories != nil {
		if _, err := s.setCategories(ctx, id, input.Categories); err != nil {
			return nil, err
		}
	}

	blog, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(blog, existing.IsPublic(), actor)
	return blog, nil
}

// Delete removes a blog. Only its author or an admin may delete it.
func (s *blogService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	blog, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Can(actor, policy.ActionDeleteBlog, blog.AuthorID) {
		return ErrNotAuthorized
	}

	if err := s.blogs.Delete(ctx, id); err != nil {
		return s.writeError(err, "Failed to delete blog")
	}
	s.search.Remove(id)
	s.log.Info().Str("blog_id", id).Str("by", actor.ID).Msg("Blog deleted")
	return nil
}

// Approve marks a blog approved. Approving an approved blog writes nothing.
func (s *blogService) Approve(ctx context.Context, actor policy.Actor, id string) (*models.Blog, error) {
	if !policy.Can(actor, policy.ActionApproveBlog, "") {
		return nil, ErrNotAuthorized
	}
	blog, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog.Approved {
		return blog, nil
	}

	if err := s.blogs.Update(ctx, id, repository.BlogUpdate{Approved: boolPtr(true)}, nil); err != nil {
		return nil, s.writeError(err, "Failed to approve blog")
	}
	return s.load(ctx, id)
}

// Publish moves an approved blog to published
func (s *blogService) Publish(ctx context.Context, actor policy.Actor, id string) (*models.Blog, error) {
	if !policy.Can(actor, policy.ActionPublishBlog, "") {
		return nil, ErrNotAuthorized
	}
	blog, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !blog.Approved {
		return nil, ErrNotApproved
	}

	upd := repository.BlogUpdate{
		Status:        statusPtr(models.BlogStatusPublished),
		MarkPublished: true,
	}
	if err := s.blogs.Update(ctx, id, upd, nil); err != nil {
		return nil, s.writeError(err, "Failed to publish blog")
	}

	blog, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.search.Upsert(searchRecord(blog))
	s.log.Info().Str("blog_id", id).Msg("Blog published")
	return blog, nil
}

// AutoSave creates a draft when no id is given, otherwise writes only the provided fields
func (s *blogService) AutoSave(ctx context.Context, actor policy.Actor, input *models.AutoSaveInput) (*models.AutoSaveResult, error) {
	if !policy.Can(actor, policy.ActionCreateBlog, "") {
		return nil, ErrNotAuthorized
	}
	if errs := s.validator.Struct(input); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	if input.ID == "" {
		return s.autoCreate(ctx, actor, input)
	}
	return s.autoUpdate(ctx, actor, input)
}

func (s *blogService) autoCreate(ctx context.Context, actor policy.Actor, input *models.AutoSaveInput) (*models.AutoSaveResult, error) {
	title := models.DefaultDraftTitle
	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		title = strings.TrimSpace(*input.Title)
	}

	now := time.Now().UTC()
	blog := &models.Blog{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   normalizeContent(input.Content),
		Status:    models.BlogStatusDraft,
		Approved:  actor.Role != models.RoleUser,
		AuthorID:  actor.ID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Description != nil {
		blog.Description = strings.TrimSpace(*input.Description)
	}
	if input.Banner != nil {
		blog.Banner = *input.Banner
	}
	if input.Tags != nil {
		blog.Tags = validation.NormalizeTags(*input.Tags)
	}

	// another save may take the slug between the check and the insert
	for attempt := 0; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, title, "")
		if err != nil {
			return nil, err
		}
		blog.Slug = slug

		err = s.blogs.Create(ctx, blog)
		if err == nil {
			break
		}
		if repository.IsUniqueViolation(err) && attempt < 2 {
			continue
		}
		return nil, s.writeError(err, "Failed to create draft")
	}

	if input.Categories != nil {
		if _, err := s.setCategories(ctx, blog.ID, *input.Categories); err != nil {
			return nil, err
		}
	}

	return &models.AutoSaveResult{
		ID:        blog.ID,
		Slug:      blog.Slug,
		Version:   blog.Version,
		Created:   true,
		UpdatedAt: blog.UpdatedAt,
	}, nil
}

func (s *blogService) autoUpdate(ctx context.Context, actor policy.Actor, input *models.AutoSaveInput) (*models.AutoSaveResult, error) {
	existing, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.ActionEditBlog, existing.AuthorID) {
		return nil, ErrNotAuthorized
	}

	var upd repository.BlogUpdate
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			title = models.DefaultDraftTitle
		}
		if title != existing.Title {
			slug, err := s.uniqueSlug(ctx, title, existing.Slug)
			if err != nil {
				return nil, err
			}
			upd.Title = &title
			upd.Slug = &slug
		}
	}
	if input.Description != nil {
		upd.Description = strPtr(strings.TrimSpace(*input.Description))
	}
	if input.Banner != nil {
		upd.Banner = input.Banner
	}
	if input.Tags != nil {
		upd.Tags = strPtr(validation.NormalizeTags(*input.Tags))
	}
	if input.Content != nil {
		if isJSONNull(input.Content) {
			upd.Content = json.RawMessage("null")
		} else {
			upd.Content = normalizeContent(input.Content)
		}
	}
	if !actor.IsAdmin() {
		upd.Status = statusPtr(models.BlogStatusDraft)
		upd.Approved = boolPtr(false)
	}

	if err := s.blogs.Update(ctx, input.ID, upd, input.Version); err != nil {
		return nil, s.writeError(err, "Failed to auto-save blog")
	}
	if input.Categories != nil {
		if _, err := s.setCategories(ctx, input.ID, *input.Categories); err != nil {
			return nil, err
		}
	}

	blog, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	// no review notification, auto-save fires on every keystroke pause
	s.syncIndex(blog, existing.IsPublic())

	return &models.AutoSaveResult{
		ID:        blog.ID,
		Slug:      blog.Slug,
		Version:   blog.Version,
		UpdatedAt: blog.UpdatedAt,
	}, nil
}

// uniqueSlug derives a slug from title, appending -2, -3, ... while taken.
// own is the caller's current slug, which does not count as taken.
func (s *blogService) uniqueSlug(ctx context.Context, title, own string) (string, error) {
	base := validation.Slugify(title)
	if base == "" {
		base = validation.Slugify(models.DefaultDraftTitle)
	}

	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := validation.WithSuffix(base, n)
		if candidate == own {
			return candidate, nil
		}
		exists, err := s.blogs.SlugExists(ctx, candidate)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to check slug")
			return "", ErrInternal
		}
		if !exists {
			return candidate, nil
		}
	}
	return base + "-" + uuid.NewString()[:8], nil
}

// Get returns a blog for editing
func (s *blogService) Get(ctx context.Context, actor policy.Actor, id string) (*models.Blog, error) {
	blog, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.ActionEditBlog, blog.AuthorID) {
		return nil, ErrNotAuthorized
	}
	blog.Content = content.NormalizeJSON(blog.Content)
	return blog, nil
}

// ListPublished returns published, approved blogs. A query goes to the
// search index when it is available and to the database otherwise.
func (s *blogService) ListPublished(ctx context.Context, filter models.BlogFilter) (*models.BlogPage, error) {
	filter = pageDefaults(filter)
	filter.Public = true
	filter.Status = ""
	filter.AuthorID = ""
	filter.Query = strings.TrimSpace(filter.Query)

	if filter.Query != "" {
		page, err := s.searchPublished(ctx, filter)
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, search.ErrUnavailable) {
			s.log.Warn().Err(err).Msg("Search failed, falling back to database")
		}
	}
	return s.list(ctx, filter)
}

func (s *blogService) searchPublished(ctx context.Context, filter models.BlogFilter) (*models.BlogPage, error) {
	res, err := s.search.Search(search.Query{
		Text:     filter.Query,
		Category: filter.Category,
		Limit:    filter.Limit,
		Offset:   filter.Offset(),
	})
	if err != nil {
		return nil, err
	}

	blogs, err := s.blogs.GetByIDs(ctx, res.IDs)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load search hits")
		return nil, ErrInternal
	}

	// the index may lag behind unpublish
	visible := make([]*models.Blog, 0, len(blogs))
	for _, blog := range blogs {
		if blog.IsPublic() {
			visible = append(visible, blog)
		}
	}
	return newPage(visible, res.Total, filter), nil
}

// GetPublished returns a published blog by slug with rendered HTML and counts the view
func (s *blogService) GetPublished(ctx context.Context, slug string) (*models.BlogDetail, error) {
	blog, err := s.blogs.GetBySlug(ctx, slug)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load blog")
		return nil, ErrInternal
	}
	if blog == nil || !blog.IsPublic() {
		return nil, ErrNotFound
	}

	if err := s.blogs.IncrementViews(ctx, blog.ID); err != nil {
		s.log.Warn().Err(err).Str("blog_id", blog.ID).Msg("Failed to count view")
	} else {
		blog.Views++
	}

	doc := content.Normalize(blog.Content)
	blog.Content, _ = json.Marshal(doc)
	return &models.BlogDetail{
		Blog:        blog,
		HTML:        content.RenderHTML(doc),
		Excerpt:     content.Excerpt(doc, excerptLength),
		ReadingTime: content.ReadingTime(doc),
	}, nil
}

// ListMine returns the actor's own blogs in any state
func (s *blogService) ListMine(ctx context.Context, actor policy.Actor, filter models.BlogFilter) (*models.BlogPage, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	filter = pageDefaults(filter)
	filter.Public = false
	filter.AuthorID = actor.ID
	return s.list(ctx, filter)
}

// ListAll returns blogs of every author, optionally by status
func (s *blogService) ListAll(ctx context.Context, actor policy.Actor, filter models.BlogFilter) (*models.BlogPage, error) {
	if !policy.Can(actor, policy.ActionViewAllBlogs, "") {
		return nil, ErrNotAuthorized
	}
	if filter.Status != "" && !models.ValidBlogStatuses[filter.Status] {
		return nil, invalidField("status", "must be one of: draft published archived")
	}
	filter = pageDefaults(filter)
	filter.Public = false
	return s.list(ctx, filter)
}

// Reindex pushes every public blog to the search index
func (s *blogService) Reindex(ctx context.Context, actor policy.Actor) (int, error) {
	if !policy.Can(actor, policy.ActionViewAllBlogs, "") {
		return 0, ErrNotAuthorized
	}

	blogs, _, err := s.blogs.List(ctx, models.BlogFilter{Public: true})
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list blogs for reindex")
		return 0, ErrInternal
	}
	recs := make([]search.BlogRecord, 0, len(blogs))
	for _, blog := range blogs {
		recs = append(recs, searchRecord(blog))
	}
	if err := s.search.Reindex(recs); err != nil {
		if errors.Is(err, search.ErrUnavailable) {
			return 0, err
		}
		s.log.Error().Err(err).Msg("Reindex failed")
		return 0, ErrInternal
	}
	return len(recs), nil
}

func (s *blogService) list(ctx context.Context, filter models.BlogFilter) (*models.BlogPage, error) {
	blogs, total, err := s.blogs.List(ctx, filter)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list blogs")
		return nil, ErrInternal
	}
	return newPage(blogs, total, filter), nil
}

func (s *blogService) load(ctx context.Context, id string) (*models.Blog, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrNotFound
	}
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("blog_id", id).Msg("Failed to load blog")
		return nil, ErrInternal
	}
	if blog == nil {
		return nil, ErrNotFound
	}
	return blog, nil
}

// setCategories connects the blog to each named category, creating missing ones
func (s *blogService) setCategories(ctx context.Context, blogID string, names []string) ([]models.Category, error) {
	seen := make(map[string]bool)
	var wanted []models.Category
	for _, name := range names {
		name = validation.NormalizeName(name)
		slug := validation.Slugify(name)
		if name == "" || slug == "" || seen[name] {
			continue
		}
		seen[name] = true
		wanted = append(wanted, models.Category{ID: uuid.NewString(), Name: name, Slug: slug, CreatedAt: time.Now().UTC()})
	}

	cats := []models.Category{}
	if len(wanted) > 0 {
		var err error
		cats, err = s.categories.FindOrCreate(ctx, wanted)
		if err != nil {
			s.log.Error().Err(err).Msg("Failed to resolve categories")
			return nil, ErrInternal
		}
	}

	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	if err := s.blogs.SetCategories(ctx, blogID, ids); err != nil {
		s.log.Error().Err(err).Str("blog_id", blogID).Msg("Failed to set categories")
		return nil, ErrInternal
	}
	return cats, nil
}

// afterWrite keeps the search index in step and asks admins to review USER edits
func (s *blogService) afterWrite(blog *models.Blog, wasPublic bool, actor policy.Actor) {
	s.syncIndex(blog, wasPublic)

	if actor.Role == models.RoleUser {
		s.notifier.BlogSubmitted(blog, &models.User{ID: actor.ID, Name: actor.Name, Email: actor.Email})
	}
}

func (s *blogService) syncIndex(blog *models.Blog, wasPublic bool) {
	switch {
	case blog.IsPublic():
		s.search.Upsert(searchRecord(blog))
	case wasPublic:
		s.search.Remove(blog.ID)
	}
}

func (s *blogService) writeError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrConflict
	case repository.IsUniqueViolation(err):
		return ErrDuplicateBlog
	}
	s.log.Error().Err(err).Msg(msg)
	return ErrInternal
}

func searchRecord(blog *models.Blog) search.BlogRecord {
	rec := search.BlogRecord{
		ID:          blog.ID,
		Title:       blog.Title,
		Slug:        blog.Slug,
		Description: blog.Description,
		Tags:        blog.Tags,
		Excerpt:     content.Excerpt(content.Normalize(blog.Content), excerptLength),
		AuthorName:  blog.AuthorName,
		Categories:  make([]string, 0, len(blog.Categories)),
	}
	for _, c := range blog.Categories {
		rec.Categories = append(rec.Categories, c.Name, c.Slug)
	}
	if blog.PublishedAt != nil {
		rec.PublishedAt = blog.PublishedAt.Unix()
	}
	return rec
}

func normalizeContent(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}
	return content.NormalizeJSON(raw)
}

func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func pageDefaults(filter models.BlogFilter) models.BlogFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	return filter
}

func newPage(blogs []*models.Blog, total int, filter models.BlogFilter) *models.BlogPage {
	if blogs == nil {
		blogs = []*models.Blog{}
	}
	totalPages := 0
	if filter.Limit > 0 {
		totalPages = (total + filter.Limit - 1) / filter.Limit
	}
	return &models.BlogPage{
		Blogs:      blogs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func statusPtr(s models.BlogStatus) *models.BlogStatus { return &s }
