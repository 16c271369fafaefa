// Package jobs runs background work: thumbnail generation after upload
// and the periodic search-term reindex.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeThumbnail generates a thumbnail for an uploaded wallpaper.
	TaskTypeThumbnail = "wallpaper:thumbnail"
	// TaskTypeReindex recomputes search terms for every wallpaper.
	TaskTypeReindex = "wallpaper:reindex"
)

// ThumbnailPayload identifies the wallpaper and the original asset to
// downscale.
type ThumbnailPayload struct {
	WallpaperID string `json:"wallpaper_id"`
	ImageURL    string `json:"image_url"`
}

// NewThumbnailTask constructs a thumbnail generation task.
func NewThumbnailTask(payload ThumbnailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeThumbnail, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// ReindexPayload contains options for the reindex job.
type ReindexPayload struct {
	Force bool `json:"force"`
}

// NewReindexTask builds a new reindex task.
func NewReindexTask(force bool) (*asynq.Task, error) {
	payload := ReindexPayload{Force: force}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReindex, body, asynq.Queue(QueueDefault)), nil
}
