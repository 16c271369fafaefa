package categories

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
)

// Service handles category business logic.
type Service struct {
	repo   Repository
	cache  *listing.Cache
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, cache *listing.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List fetches one page, name ascending by default.
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[Category], error) {
	q = q.Normalize(DefaultPageSize)
	if q.SortField == "" {
		q.SortField = "name"
	}
	if q.SortDirection != listing.SortDesc {
		q.SortDirection = listing.SortAsc
	}

	page, err := s.listCached(ctx, q)
	if err != nil && errors.Is(err, shared.ErrCursorMismatch) {
		q.Cursor = ""
		page, err = s.listCached(ctx, q)
	}
	return page, err
}

func (s *Service) listCached(ctx context.Context, q listing.Query) (listing.Page[Category], error) {
	var page listing.Page[Category]
	sig := q.Signature(Kind)
	err := s.cache.FetchJSON(ctx, Kind, sig, q.Cursor, q.Refresh, &page, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx, q)
	})
	return page, err
}

// Get fetches a single category.
func (s *Service) Get(ctx context.Context, id string) (*Category, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a category.
func (s *Service) Create(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	now := time.Now().UTC()
	c := Category{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if c.Name == "" {
		return nil, errors.New("categories: name required")
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &c, nil
}

// Update merges non-nil fields into the record.
func (s *Service) Update(ctx context.Context, id string, req UpdateCategoryRequest) (*Category, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CoverImageURL != nil {
		updates["cover_image_url"] = *req.CoverImageURL
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		s.bump(ctx)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the category. Wallpapers referencing it by name keep
// the dangling reference.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if err := s.cache.Bump(ctx, Kind); err != nil && s.logger != nil {
		s.logger.Warn("page cache bump", slog.Any("error", err))
	}
}
