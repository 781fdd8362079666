// Package search keeps published blogs in a Meilisearch index.
package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog"
)

// ErrUnavailable is returned when the index is not configured or unhealthy.
// Callers fall back to database search.
var ErrUnavailable = errors.New("search index unavailable")

// BlogRecord is the indexed form of a published blog
type BlogRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Tags        string   `json:"tags"`
	Excerpt     string   `json:"excerpt"`
	Categories  []string `json:"categories"`
	AuthorName  string   `json:"authorName"`
	PublishedAt int64    `json:"publishedAt"`
}

// Query is a full-text blog query
type Query struct {
	Text     string
	Category string
	Limit    int
	Offset   int
}

// Result holds matching blog IDs in relevance order
type Result struct {
	IDs   []string
	Total int
}

// Index is a Meilisearch-backed blog index. A nil *Index is valid and always unavailable.
type Index struct {
	client  meili.ServiceManager
	uid     string
	healthy atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// New creates the index client, configures the index when reachable and
// starts a background health monitor
func New(url, apiKey, uid string, log zerolog.Logger) *Index {
	idx := &Index{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		uid:    uid,
		done:   make(chan struct{}),
		log:    log.With().Str("component", "search").Logger(),
	}

	if _, err := idx.client.Health(); err != nil {
		idx.log.Warn().Err(err).Str("url", url).Msg("Meilisearch unavailable, using database search")
	} else {
		idx.healthy.Store(true)
		idx.configure()
	}

	idx.wg.Add(1)
	go idx.healthLoop()
	return idx
}

func (i *Index) configure() {
	if _, err := i.client.CreateIndex(&meili.IndexConfig{Uid: i.uid, PrimaryKey: "id"}); err != nil {
		i.log.Debug().Err(err).Str("index", i.uid).Msg("Create index failed (may already exist)")
	}

	index := i.client.Index(i.uid)
	filterable := []interface{}{"categories"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		i.log.Warn().Err(err).Msg("Failed to update filterable attributes")
	}
	searchable := []string{"title", "description", "tags", "categories", "excerpt"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		i.log.Warn().Err(err).Msg("Failed to update searchable attributes")
	}
}

func (i *Index) healthLoop() {
	defer i.wg.Done()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-i.done:
			return
		case <-ticker.C:
			_, err := i.client.Health()
			was := i.healthy.Swap(err == nil)
			if err == nil && !was {
				i.log.Info().Msg("Meilisearch recovered, reconfiguring index")
				i.configure()
			}
		}
	}
}

// Healthy reports whether the index can serve queries
func (i *Index) Healthy() bool {
	return i != nil && i.healthy.Load()
}

// Close stops the health monitor and waits for pending index writes
func (i *Index) Close() {
	if i == nil {
		return
	}
	close(i.done)
	i.wg.Wait()
}

// Search returns the IDs of matching published blogs
func (i *Index) Search(q Query) (*Result, error) {
	if !i.Healthy() {
		return nil, ErrUnavailable
	}

	limit := int64(q.Limit)
	if limit <= 0 {
		limit = 10
	}
	req := &meili.SearchRequest{
		Limit:                limit,
		Offset:               int64(q.Offset),
		AttributesToRetrieve: []string{"id"},
	}
	if filter := categoryFilter(q.Category); filter != "" {
		req.Filter = filter
	}

	resp, err := i.client.Index(i.uid).Search(q.Text, req)
	if err != nil {
		i.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	result := &Result{IDs: make([]string, 0, len(resp.Hits)), Total: int(resp.EstimatedTotalHits)}
	for _, hit := range resp.Hits {
		if id := decodeString(hit, "id"); id != "" {
			result.IDs = append(result.IDs, id)
		}
	}
	return result, nil
}

// Upsert indexes a blog in the background
func (i *Index) Upsert(rec BlogRecord) {
	if !i.Healthy() {
		return
	}
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		if _, err := i.client.Index(i.uid).AddDocuments([]BlogRecord{rec}, nil); err != nil {
			i.log.Error().Err(err).Str("blog_id", rec.ID).Msg("Failed to index blog")
		}
	}()
}

// Remove deletes a blog from the index in the background
func (i *Index) Remove(id string) {
	if !i.Healthy() {
		return
	}
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		if _, err := i.client.Index(i.uid).DeleteDocument(id, nil); err != nil {
			i.log.Error().Err(err).Str("blog_id", id).Msg("Failed to remove blog from index")
		}
	}()
}

// Reindex upserts recs in one batch
func (i *Index) Reindex(recs []BlogRecord) error {
	if !i.Healthy() {
		return ErrUnavailable
	}
	if len(recs) == 0 {
		return nil
	}
	if _, err := i.client.Index(i.uid).AddDocuments(recs, nil); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

func categoryFilter(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return ""
	}
	return fmt.Sprintf("categories = %q", strings.ToLower(category))
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
