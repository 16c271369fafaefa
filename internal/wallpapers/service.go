package wallpapers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
)

// BlobStore holds original assets and their generated thumbnails.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	PublicURL(key string) string
}

// downloadLinkTTL bounds how long a presigned original link stays valid.
const downloadLinkTTL = 15 * time.Minute

// uploadLinkTTL bounds how long a direct-upload slot stays open.
const uploadLinkTTL = 10 * time.Minute

// OriginalKey derives the object key reserved for a fresh upload. The
// key is persisted on the record; later reads use the stored value.
func OriginalKey(id, filename string) string {
	return "wallpapers/originals/" + id + strings.ToLower(path.Ext(filename))
}

// ThumbnailKey is the object key of the generated thumbnail.
func ThumbnailKey(id string) string {
	return "wallpapers/thumbs/" + id + ".webp"
}

// TaskEnqueuer schedules background work for a wallpaper.
type TaskEnqueuer interface {
	EnqueueThumbnail(ctx context.Context, wallpaperID, imageURL string) error
}

// BulkResult reports the outcome of a best-effort bulk status change.
type BulkResult struct {
	Updated []string `json:"updated"`
	Failed  []string `json:"failed,omitempty"`
}

// Service orchestrates wallpaper listings, moderation and uploads.
type Service struct {
	repo   Repository
	cache  *listing.Cache
	blobs  BlobStore
	tasks  TaskEnqueuer
	logger *slog.Logger
}

// NewService builds a Service. blobs and tasks may be nil when the
// upload flow is not wired (tests, worker).
func NewService(repo Repository, cache *listing.Cache, blobs BlobStore, tasks TaskEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, blobs: blobs, tasks: tasks, logger: logger}
}

// List fetches one page. An empty Search term is a plain listing; a
// stale cursor restarts from the first page rather than failing the
// request.
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[Wallpaper], error) {
	q = q.Normalize(DefaultPageSize)
	if q.SortField == "" {
		q.SortField = "created_at"
	}

	page, err := s.listCached(ctx, q)
	if err != nil && errors.Is(err, shared.ErrCursorMismatch) {
		q.Cursor = ""
		page, err = s.listCached(ctx, q)
	}
	return page, err
}

func (s *Service) listCached(ctx context.Context, q listing.Query) (listing.Page[Wallpaper], error) {
	var page listing.Page[Wallpaper]
	sig := q.Signature(Kind)
	err := s.cache.FetchJSON(ctx, Kind, sig, q.Cursor, q.Refresh, &page, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx, q)
	})
	return page, err
}

// Get fetches a single wallpaper.
func (s *Service) Get(ctx context.Context, id string) (*Wallpaper, error) {
	return s.repo.Get(ctx, id)
}

// ListByIDs resolves wallpapers in the order of ids. IDs without a
// record are skipped, which is what collection views want.
func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]Wallpaper, error) {
	return s.repo.ListByIDs(ctx, ids)
}

// Create registers an already-uploaded wallpaper asset.
func (s *Service) Create(ctx context.Context, req CreateWallpaperRequest) (*Wallpaper, error) {
	now := time.Now().UTC()
	w := Wallpaper{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		ThumbnailURL: req.ThumbnailURL,
		StorageKey:   req.StorageKey,
		Category:     req.Category,
		Tags:         req.Tags,
		Author:       req.Author,
		Status:       StatusPending,
		Width:        req.Width,
		Height:       req.Height,
		SizeBytes:    req.SizeBytes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	w.SearchTerms = SearchTerms(w.Name, w.Tags, w.Author, w.Category)

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &w, nil
}

// Update merges non-nil fields into the record. Search terms are
// recomputed whenever a term source changes.
func (s *Service) Update(ctx context.Context, id string, req UpdateWallpaperRequest) (*Wallpaper, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	reindex := false

	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
		updates["name"] = existing.Name
		reindex = true
	}
	if req.Description != nil {
		existing.Description = *req.Description
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		existing.ImageURL = *req.ImageURL
		updates["image_url"] = *req.ImageURL
	}
	if req.ThumbnailURL != nil {
		existing.ThumbnailURL = *req.ThumbnailURL
		updates["thumbnail_url"] = *req.ThumbnailURL
	}
	if req.Category != nil {
		existing.Category = *req.Category
		updates["category"] = *req.Category
		reindex = true
	}
	if req.Tags != nil {
		existing.Tags = *req.Tags
		updates["tags"] = *req.Tags
		reindex = true
	}
	if req.Author != nil {
		existing.Author = *req.Author
		updates["author"] = *req.Author
		reindex = true
	}
	if req.Status != nil {
		existing.Status = Status(*req.Status)
		updates["status"] = *req.Status
	}
	if req.Width != nil {
		existing.Width = *req.Width
		updates["width"] = *req.Width
	}
	if req.Height != nil {
		existing.Height = *req.Height
		updates["height"] = *req.Height
	}
	if req.SizeBytes != nil {
		existing.SizeBytes = *req.SizeBytes
		updates["size_bytes"] = *req.SizeBytes
	}

	if len(updates) == 0 {
		return existing, nil
	}
	if reindex {
		existing.SearchTerms = SearchTerms(existing.Name, existing.Tags, existing.Author, existing.Category)
		updates["search_terms"] = existing.SearchTerms
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	existing.UpdatedAt = time.Now().UTC()
	s.bump(ctx)
	return existing, nil
}

// Delete removes the record and, best effort, the stored assets.
// Collections referencing the id keep their entry; reads skip it.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)

	// Records registered without an upload carry no storage key and own
	// no blobs.
	if s.blobs != nil && existing.StorageKey != "" {
		for _, key := range []string{existing.StorageKey, ThumbnailKey(id)} {
			if err := s.blobs.Delete(ctx, key); err != nil && s.logger != nil {
				s.logger.Warn("delete blob", slog.String("key", key), slog.Any("error", err))
			}
		}
	}
	return nil
}

// UploadTarget describes a reserved direct-upload slot: the browser
// PUTs the asset to URL, then registers the wallpaper with PublicURL
// as its image URL.
type UploadTarget struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	URL       string `json:"url"`
	PublicURL string `json:"public_url"`
}

// NewUploadTarget reserves an object key and presigns a direct PUT for
// it.
func (s *Service) NewUploadTarget(ctx context.Context, filename, contentType string) (*UploadTarget, error) {
	if s.blobs == nil {
		return nil, errors.New("wallpapers: blob store not configured")
	}
	id := uuid.NewString()
	key := OriginalKey(id, filename)
	url, err := s.blobs.PresignPut(ctx, key, contentType, uploadLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadTarget{ID: id, Key: key, URL: url, PublicURL: s.blobs.PublicURL(key)}, nil
}

// DownloadURL returns a short-lived link for the original asset. When
// no blob store is wired the stored public URL is returned instead.
func (s *Service) DownloadURL(ctx context.Context, id string) (string, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.blobs == nil || w.StorageKey == "" {
		return w.ImageURL, nil
	}
	return s.blobs.PresignGet(ctx, w.StorageKey, downloadLinkTTL)
}

// BulkSetStatus issues independent concurrent writes, best effort.
// Partial failure leaves the successes committed and reports the failed
// ids in one aggregate error.
func (s *Service) BulkSetStatus(ctx context.Context, ids []string, status Status) (BulkResult, error) {
	if !status.Valid() {
		return BulkResult{}, fmt.Errorf("invalid status %q", status)
	}

	var mu sync.Mutex
	result := BulkResult{}

	var g errgroup.Group
	g.SetLimit(8)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			err := s.repo.SetStatus(ctx, id, status)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if s.logger != nil {
					s.logger.Error("bulk status write failed", slog.String("id", id), slog.Any("error", err))
				}
				result.Failed = append(result.Failed, id)
				return nil
			}
			result.Updated = append(result.Updated, id)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Updated)
	sort.Strings(result.Failed)
	s.bump(ctx)

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%d of %d status updates failed: %s", len(result.Failed), len(ids), strings.Join(result.Failed, ", "))
	}
	return result, nil
}

// Upload stores the original asset, registers a pending wallpaper and
// queues thumbnail generation.
func (s *Service) Upload(ctx context.Context, req UploadRequest, filename, contentType string, size int64, content io.Reader) (*Wallpaper, error) {
	if s.blobs == nil {
		return nil, errors.New("wallpapers: blob store not configured")
	}

	id := uuid.NewString()
	key := OriginalKey(id, filename)
	url, err := s.blobs.Put(ctx, key, content, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}

	now := time.Now().UTC()
	w := Wallpaper{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    url,
		StorageKey:  key,
		Category:    req.Category,
		Tags:        req.Tags,
		Author:      req.Author,
		Status:      StatusPending,
		SizeBytes:   size,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	w.SearchTerms = SearchTerms(w.Name, w.Tags, w.Author, w.Category)

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.bump(ctx)

	// Thumbnail generation is asynchronous; the record serves the
	// original until the worker fills in the thumbnail URL.
	if s.tasks != nil {
		if err := s.tasks.EnqueueThumbnail(ctx, w.ID, w.ImageURL); err != nil && s.logger != nil {
			s.logger.Warn("enqueue thumbnail", slog.String("id", w.ID), slog.Any("error", err))
		}
	}
	return &w, nil
}

// Reindex recomputes the search-term set for every wallpaper. Used by
// the periodic worker job to repair drift.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	all, err := s.repo.AllForReindex(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, w := range all {
		terms := SearchTerms(w.Name, w.Tags, w.Author, w.Category)
		if err := s.repo.SetSearchTerms(ctx, w.ID, terms); err != nil {
			if s.logger != nil {
				s.logger.Error("reindex wallpaper", slog.String("id", w.ID), slog.Any("error", err))
			}
			continue
		}
		updated++
	}
	s.bump(ctx)
	return updated, nil
}

func (s *Service) bump(ctx context.Context) {
	if err := s.cache.Bump(ctx, Kind); err != nil && s.logger != nil {
		s.logger.Warn("page cache bump", slog.Any("error", err))
	}
}
