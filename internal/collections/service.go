package collections

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/wallpapers"
)

// WallpaperResolver resolves weak wallpaper references for the detail
// view. Missing ids are simply absent from the result.
type WallpaperResolver interface {
	ListByIDs(ctx context.Context, ids []string) ([]wallpapers.Wallpaper, error)
}

// Service handles collection business logic.
type Service struct {
	repo       Repository
	wallpapers WallpaperResolver
	cache      *listing.Cache
	logger     *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, resolver WallpaperResolver, cache *listing.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallpapers: resolver, cache: cache, logger: logger}
}

// List fetches one page, newest first by default.
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[Collection], error) {
	q = q.Normalize(DefaultPageSize)
	q.SortField = "created_at"

	page, err := s.listCached(ctx, q)
	if err != nil && errors.Is(err, shared.ErrCursorMismatch) {
		q.Cursor = ""
		page, err = s.listCached(ctx, q)
	}
	return page, err
}

func (s *Service) listCached(ctx context.Context, q listing.Query) (listing.Page[Collection], error) {
	var page listing.Page[Collection]
	sig := q.Signature(Kind)
	err := s.cache.FetchJSON(ctx, Kind, sig, q.Cursor, q.Refresh, &page, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx, q)
	})
	return page, err
}

// Get fetches a single collection without resolving references.
func (s *Service) Get(ctx context.Context, id string) (*Collection, error) {
	return s.repo.Get(ctx, id)
}

// GetDetail fetches a collection and resolves its wallpapers. Dangling
// references are skipped, never an error.
func (s *Service) GetDetail(ctx context.Context, id string) (*Detail, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resolved, err := s.wallpapers.ListByIDs(ctx, c.WallpaperIDs)
	if err != nil {
		// The collection itself is intact; degrade to an unresolved view.
		if s.logger != nil {
			s.logger.Warn("resolve collection wallpapers", slog.String("id", id), slog.Any("error", err))
		}
		resolved = nil
	}
	return &Detail{Collection: *c, Wallpapers: resolved}, nil
}

// Create adds a collection.
func (s *Service) Create(ctx context.Context, req CreateCollectionRequest) (*Collection, error) {
	now := time.Now().UTC()
	c := Collection{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		WallpaperIDs:  req.WallpaperIDs,
		IsPublic:      req.IsPublic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if c.WallpaperIDs == nil {
		c.WallpaperIDs = []string{}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.bump(ctx)
	return &c, nil
}

// Update merges non-nil fields into the record.
func (s *Service) Update(ctx context.Context, id string, req UpdateCollectionRequest) (*Collection, error) {
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
	if req.WallpaperIDs != nil {
		updates["wallpaper_ids"] = *req.WallpaperIDs
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
		s.bump(ctx)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the collection outright, leaving wallpapers untouched.
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
