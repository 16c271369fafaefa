package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/wallpapers"
)

// thumbnailMaxWidth is the dashboard grid cell width, doubled for
// high-density displays.
const thumbnailMaxWidth = 800

// ThumbnailRenderer downscales an image. Implemented by the optimizer
// client.
type ThumbnailRenderer interface {
	Thumbnail(ctx context.Context, image io.Reader, filename string, maxWidth int) ([]byte, error)
}

// ThumbnailStore persists the generated thumbnail.
type ThumbnailStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// NewThumbnailHandler returns the Asynq handler for TaskTypeThumbnail.
// It fetches the original, renders a WebP thumbnail and records its URL
// on the wallpaper.
func NewThumbnailHandler(renderer ThumbnailRenderer, store ThumbnailStore, svc *wallpapers.Service, logger *slog.Logger) asynq.HandlerFunc {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ThumbnailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.WallpaperID == "" || payload.ImageURL == "" {
			return asynq.SkipRetry
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, payload.ImageURL, nil)
		if err != nil {
			return asynq.SkipRetry
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetch original: %w", err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("fetch original: status %d", resp.StatusCode)
		}

		rendered, err := renderer.Thumbnail(ctx, resp.Body, payload.WallpaperID, thumbnailMaxWidth)
		if err != nil {
			return fmt.Errorf("render thumbnail: %w", err)
		}

		key := wallpapers.ThumbnailKey(payload.WallpaperID)
		url, err := store.Put(ctx, key, bytes.NewReader(rendered), int64(len(rendered)), "image/webp")
		if err != nil {
			return fmt.Errorf("store thumbnail: %w", err)
		}

		if _, err := svc.Update(ctx, payload.WallpaperID, wallpapers.UpdateWallpaperRequest{ThumbnailURL: &url}); err != nil {
			// Deleted before the job ran, nothing left to update.
			if errors.Is(err, wallpapers.ErrNotFound) {
				return asynq.SkipRetry
			}
			return fmt.Errorf("record thumbnail: %w", err)
		}

		logger.Info("thumbnail generated",
			slog.String("wallpaper_id", payload.WallpaperID),
			slog.String("url", url),
		)
		return nil
	}
}
