package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Reindexer recomputes search terms across the catalog.
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// NewReindexHandler returns the Asynq handler for TaskTypeReindex.
func NewReindexHandler(svc Reindexer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReindexPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		updated, err := svc.Reindex(ctx)
		if err != nil {
			return err
		}
		logger.Info("search reindex finished",
			slog.Int("updated", updated),
			slog.Bool("force", payload.Force),
		)
		return nil
	}
}
