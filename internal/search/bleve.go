// Discovery - Content Search and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/discovery

package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/goccy/go-json"

	"github.com/tomtom215/discovery/internal/logging"
	"github.com/tomtom215/discovery/internal/models"
)

var (
	// ErrIndexClosed is returned after Close.
	ErrIndexClosed = errors.New("search index is closed")

	// ErrEmptyContentID is returned when indexing a record without an ID.
	ErrEmptyContentID = errors.New("content ID cannot be empty")
)

// Field boosts for keyword search.
const (
	boostTitle       = 3.0
	boostDescription = 2.0
	boostTags        = 1.0
)

// BleveBackend is the primary search backend. Every record is indexed whatever
// its status so Get can resolve drafts; ranking queries filter to published.
type BleveBackend struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// OpenIndex opens the bleve index at path, creating it when missing. An empty
// path keeps the index in memory.
func OpenIndex(path string) (*BleveBackend, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &BleveBackend{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	return &BleveBackend{index: idx, path: path}, nil
}

// String names the index for supervisor logs.
func (b *BleveBackend) String() string { return "search-index" }

// Index adds or replaces one record.
func (b *BleveBackend) Index(_ context.Context, c *models.ContentRecord) error {
	if strings.TrimSpace(c.ContentID) == "" {
		return ErrEmptyContentID
	}
	source, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.ContentID, err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrIndexClosed
	}
	if err := b.index.Index(c.ContentID, toDocument(c, source)); err != nil {
		return fmt.Errorf("index %s: %w", c.ContentID, err)
	}
	return nil
}

// IndexBatch indexes records in a single bleve batch.
func (b *BleveBackend) IndexBatch(_ context.Context, records []models.ContentRecord) error {
	if len(records) == 0 {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrIndexClosed
	}

	batch := b.index.NewBatch()
	for i := range records {
		c := &records[i]
		if strings.TrimSpace(c.ContentID) == "" {
			return ErrEmptyContentID
		}
		source, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.ContentID, err)
		}
		if err := batch.Index(c.ContentID, toDocument(c, source)); err != nil {
			return fmt.Errorf("batch %s: %w", c.ContentID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Delete removes a record. Unknown IDs are not an error.
func (b *BleveBackend) Delete(_ context.Context, contentID string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrIndexClosed
	}
	return b.index.Delete(contentID)
}

// DocCount returns the number of indexed records.
func (b *BleveBackend) DocCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, ErrIndexClosed
	}
	return b.index.DocCount()
}

// Close flushes and closes the index. Calling Close twice is a no-op.
func (b *BleveBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}

// Trending returns published records newest first.
func (b *BleveBackend) Trending(ctx context.Context, limit int) ([]models.ContentRecord, error) {
	req := bleve.NewSearchRequest(publishedQuery())
	req.SortBy([]string{"-" + fieldPublishDate, "_id"})
	return b.run(ctx, req, limit)
}

// Recommend boosts favorite categories and tags and excludes watched records.
func (b *BleveBackend) Recommend(ctx context.Context, pref *models.UserPreference, limit int) ([]models.ContentRecord, error) {
	q := bleve.NewBooleanQuery()
	q.AddMust(publishedQuery())
	for _, c := range pref.FavoriteCategories {
		q.AddShould(termQuery(fieldCategory, c, 1))
	}
	for _, t := range pref.FavoriteTags {
		q.AddShould(termQuery(fieldTags, t, 1))
	}
	if len(pref.WatchedContent) > 0 {
		q.AddMustNot(bleve.NewDocIDQuery(pref.WatchedContent))
	}

	req := bleve.NewSearchRequest(q)
	req.SortBy([]string{"-_score", "-" + fieldPublishDate, "_id"})
	return b.run(ctx, req, limit)
}

// Search requires a fuzzy keyword match in title, description or tags.
// Category filters; tags boost.
func (b *BleveBackend) Search(ctx context.Context, sq models.SearchQuery, limit int) ([]models.ContentRecord, error) {
	keywords := strings.TrimSpace(sq.Keywords)
	if keywords == "" {
		return []models.ContentRecord{}, nil
	}

	q := bleve.NewBooleanQuery()
	q.AddMust(publishedQuery())
	q.AddMust(bleve.NewDisjunctionQuery(
		matchQuery(fieldTitle, keywords, boostTitle),
		matchQuery(fieldDescription, keywords, boostDescription),
		matchQuery(fieldTagText, keywords, boostTags),
	))
	if sq.Category != "" {
		q.AddMust(termQuery(fieldCategory, sq.Category, 1))
	}
	for _, t := range sq.Tags {
		q.AddShould(termQuery(fieldTags, t, 1))
	}

	req := bleve.NewSearchRequest(q)
	req.SortBy([]string{"-_score", "-" + fieldPublishDate, "_id"})
	return b.run(ctx, req, limit)
}

// Similar returns published records sharing a category or tag with ref.
func (b *BleveBackend) Similar(ctx context.Context, ref *models.ContentRecord, limit int) ([]models.ContentRecord, error) {
	var facets []query.Query
	if ref.Category != "" {
		facets = append(facets, termQuery(fieldCategory, ref.Category, 1))
	}
	for _, t := range ref.Tags {
		facets = append(facets, termQuery(fieldTags, t, 1))
	}
	if len(facets) == 0 {
		return []models.ContentRecord{}, nil
	}

	q := bleve.NewBooleanQuery()
	q.AddMust(publishedQuery())
	q.AddMust(bleve.NewDisjunctionQuery(facets...))
	q.AddMustNot(bleve.NewDocIDQuery([]string{ref.ContentID}))

	req := bleve.NewSearchRequest(q)
	req.SortBy([]string{"-_score", "-" + fieldPublishDate, "_id"})
	return b.run(ctx, req, limit)
}

// Get returns one record whatever its status.
func (b *BleveBackend) Get(ctx context.Context, contentID string) (*models.ContentRecord, error) {
	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{contentID}))
	out, err := b.run(ctx, req, 1)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (b *BleveBackend) run(ctx context.Context, req *bleve.SearchRequest, limit int) ([]models.ContentRecord, error) {
	req.Size = limit
	req.Fields = []string{fieldSource}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrIndexClosed
	}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	out := make([]models.ContentRecord, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, ok := hit.Fields[fieldSource].(string)
		if !ok {
			logging.Ctx(ctx).Warn().Str("content_id", hit.ID).Msg("Indexed record has no stored source")
			continue
		}
		var c models.ContentRecord
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("content_id", hit.ID).Msg("Failed to decode indexed record")
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func publishedQuery() query.Query {
	return termQuery(fieldStatus, string(models.StatusPublished), 1)
}

func termQuery(field, term string, boost float64) query.Query {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func matchQuery(field, text string, boost float64) query.Query {
	q := bleve.NewMatchQuery(text)
	q.SetField(field)
	q.SetFuzziness(1)
	q.SetBoost(boost)
	return q
}

var _ Backend = (*BleveBackend)(nil)
