package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/wallpapers"
	"github.com/IshuSinghSE/wallpaperz-sub000/jobs"
	_ "github.com/IshuSinghSE/wallpaperz-sub000/testing"
)

type memRepo struct {
	wallpapers map[string]*wallpapers.Wallpaper
}

func (m *memRepo) List(ctx context.Context, q listing.Query) (listing.Page[wallpapers.Wallpaper], error) {
	return listing.Page[wallpapers.Wallpaper]{}, nil
}

func (m *memRepo) Get(ctx context.Context, id string) (*wallpapers.Wallpaper, error) {
	w, ok := m.wallpapers[id]
	if !ok {
		return nil, wallpapers.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (m *memRepo) ListByIDs(ctx context.Context, ids []string) ([]wallpapers.Wallpaper, error) {
	return nil, nil
}

func (m *memRepo) Create(ctx context.Context, w wallpapers.Wallpaper) error {
	m.wallpapers[w.ID] = &w
	return nil
}

func (m *memRepo) Update(ctx context.Context, id string, updates map[string]any) error {
	w, ok := m.wallpapers[id]
	if !ok {
		return wallpapers.ErrNotFound
	}
	if v, ok := updates["thumbnail_url"]; ok {
		w.ThumbnailURL = v.(string)
	}
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	delete(m.wallpapers, id)
	return nil
}

func (m *memRepo) SetStatus(ctx context.Context, id string, status wallpapers.Status) error {
	return nil
}

func (m *memRepo) AllForReindex(ctx context.Context) ([]wallpapers.Wallpaper, error) {
	return nil, nil
}

func (m *memRepo) SetSearchTerms(ctx context.Context, id string, terms []string) error {
	return nil
}

type fakeRenderer struct {
	rendered []byte
}

func (f *fakeRenderer) Thumbnail(ctx context.Context, image io.Reader, filename string, maxWidth int) ([]byte, error) {
	if _, err := io.Copy(io.Discard, image); err != nil {
		return nil, err
	}
	return f.rendered, nil
}

type fakeStore struct {
	keys []string
}

func (f *fakeStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

func TestThumbnailHandler(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("original image bytes"))
	}))
	defer origin.Close()

	repo := &memRepo{wallpapers: map[string]*wallpapers.Wallpaper{
		"w1": {ID: "w1", Name: "Misty Pines", ImageURL: origin.URL + "/w1.jpg", CreatedAt: time.Now().UTC()},
	}}
	svc := wallpapers.NewService(repo, listing.NewCache(nil, 0), nil, nil, nil)
	store := &fakeStore{}
	handler := jobs.NewThumbnailHandler(&fakeRenderer{rendered: []byte("webp")}, store, svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task, err := jobs.NewThumbnailTask(jobs.ThumbnailPayload{WallpaperID: "w1", ImageURL: origin.URL + "/w1.jpg"})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	require.Len(t, store.keys, 1)
	assert.Equal(t, "wallpapers/thumbs/w1.webp", store.keys[0])
	assert.Equal(t, "https://cdn.test/wallpapers/thumbs/w1.webp", repo.wallpapers["w1"].ThumbnailURL)
}

func TestThumbnailHandlerSkipsDeletedWallpaper(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes"))
	}))
	defer origin.Close()

	repo := &memRepo{wallpapers: map[string]*wallpapers.Wallpaper{}}
	svc := wallpapers.NewService(repo, listing.NewCache(nil, 0), nil, nil, nil)
	handler := jobs.NewThumbnailHandler(&fakeRenderer{rendered: []byte("webp")}, &fakeStore{}, svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task, err := jobs.NewThumbnailTask(jobs.ThumbnailPayload{WallpaperID: "gone", ImageURL: origin.URL + "/gone.jpg"})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestThumbnailHandlerBadPayload(t *testing.T) {
	handler := jobs.NewThumbnailHandler(&fakeRenderer{}, &fakeStore{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	task := asynq.NewTask(jobs.TaskTypeThumbnail, []byte("not json"))
	err := handler(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestThumbnailHandlerOriginFailure(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer origin.Close()

	handler := jobs.NewThumbnailHandler(&fakeRenderer{}, &fakeStore{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	task, err := jobs.NewThumbnailTask(jobs.ThumbnailPayload{WallpaperID: "w1", ImageURL: origin.URL + "/w1.jpg"})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status 404"))
	assert.NotErrorIs(t, err, asynq.SkipRetry, "fetch failures must stay retryable")
}
