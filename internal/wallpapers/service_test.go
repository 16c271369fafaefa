package wallpapers_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/wallpapers"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	mu         sync.Mutex
	wallpapers map[string]*wallpapers.Wallpaper

	listResult   listing.Page[wallpapers.Wallpaper]
	listQueries  []listing.Query
	listError    error
	failStatusID string
}

func newMockRepository() *mockRepository {
	return &mockRepository{wallpapers: make(map[string]*wallpapers.Wallpaper)}
}

func (m *mockRepository) List(ctx context.Context, q listing.Query) (listing.Page[wallpapers.Wallpaper], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listQueries = append(m.listQueries, q)
	if m.listError != nil && q.Cursor != "" {
		return listing.Page[wallpapers.Wallpaper]{}, m.listError
	}
	return m.listResult, nil
}

func (m *mockRepository) Get(ctx context.Context, id string) (*wallpapers.Wallpaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallpapers[id]
	if !ok {
		return nil, wallpapers.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (m *mockRepository) ListByIDs(ctx context.Context, ids []string) ([]wallpapers.Wallpaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wallpapers.Wallpaper, 0, len(ids))
	for _, id := range ids {
		if w, ok := m.wallpapers[id]; ok {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(ctx context.Context, w wallpapers.Wallpaper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallpapers[w.ID]; ok {
		return wallpapers.ErrAlreadyExists
	}
	m.wallpapers[w.ID] = &w
	return nil
}

func (m *mockRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallpapers[id]
	if !ok {
		return wallpapers.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		w.Name = v.(string)
	}
	if v, ok := updates["thumbnail_url"]; ok {
		w.ThumbnailURL = v.(string)
	}
	if v, ok := updates["search_terms"]; ok {
		w.SearchTerms = v.([]string)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallpapers[id]; !ok {
		return wallpapers.ErrNotFound
	}
	delete(m.wallpapers, id)
	return nil
}

func (m *mockRepository) SetStatus(ctx context.Context, id string, status wallpapers.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == m.failStatusID {
		return errors.New("write conflict")
	}
	w, ok := m.wallpapers[id]
	if !ok {
		return shared.ErrNotFound
	}
	w.Status = status
	return nil
}

func (m *mockRepository) AllForReindex(ctx context.Context) ([]wallpapers.Wallpaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wallpapers.Wallpaper, 0, len(m.wallpapers))
	for _, w := range m.wallpapers {
		out = append(out, *w)
	}
	return out, nil
}

func (m *mockRepository) SetSearchTerms(ctx context.Context, id string, terms []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallpapers[id]
	if !ok {
		return shared.ErrNotFound
	}
	w.SearchTerms = terms
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func newTestService(repo wallpapers.Repository) *wallpapers.Service {
	return wallpapers.NewService(repo, listing.NewCache(nil, 0), nil, nil, nil)
}

func seedWallpaper(repo *mockRepository, id, name string, status wallpapers.Status) {
	repo.wallpapers[id] = &wallpapers.Wallpaper{
		ID:         id,
		Name:       name,
		Category:   "Nature",
		Author:     "lena",
		Status:     status,
		StorageKey: "wallpapers/originals/" + id,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func TestListAppliesDefaults(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), listing.Query{})
	require.NoError(t, err)

	require.Len(t, repo.listQueries, 1)
	q := repo.listQueries[0]
	assert.Equal(t, wallpapers.DefaultPageSize, q.PageSize)
	assert.Equal(t, "created_at", q.SortField)
	assert.Equal(t, listing.SortDesc, q.SortDirection)
}

func TestListStaleCursorRestartsFromFirstPage(t *testing.T) {
	repo := newMockRepository()
	repo.listError = shared.ErrCursorMismatch
	repo.listResult = listing.Page[wallpapers.Wallpaper]{Items: []wallpapers.Wallpaper{{ID: "w1"}}}
	svc := newTestService(repo)

	page, err := svc.List(context.Background(), listing.Query{Cursor: "stale-cursor"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	require.Len(t, repo.listQueries, 2)
	assert.Equal(t, "stale-cursor", repo.listQueries[0].Cursor)
	assert.Equal(t, "", repo.listQueries[1].Cursor, "retry must drop the cursor")
}

func TestCreateStartsPending(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	w, err := svc.Create(context.Background(), wallpapers.CreateWallpaperRequest{
		Name:     "Misty Pines",
		ImageURL: "https://cdn.test/originals/a.jpg",
		Category: "Nature",
		Author:   "lena",
		Tags:     []string{"forest"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, wallpapers.StatusPending, w.Status)
	assert.Contains(t, w.SearchTerms, "misty")
	assert.Contains(t, w.SearchTerms, "forest")
}

func TestUpdateRecomputesSearchTermsOnRename(t *testing.T) {
	repo := newMockRepository()
	seedWallpaper(repo, "w1", "Old Name", wallpapers.StatusApproved)
	svc := newTestService(repo)

	name := "Ocean Sunrise"
	updated, err := svc.Update(context.Background(), "w1", wallpapers.UpdateWallpaperRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Ocean Sunrise", updated.Name)
	assert.Contains(t, updated.SearchTerms, "ocean")
	assert.Contains(t, updated.SearchTerms, "sunrise")
	assert.NotContains(t, updated.SearchTerms, "old")
}

func TestUpdateMissingWallpaper(t *testing.T) {
	svc := newTestService(newMockRepository())

	name := "anything"
	_, err := svc.Update(context.Background(), "nope", wallpapers.UpdateWallpaperRequest{Name: &name})
	assert.ErrorIs(t, err, wallpapers.ErrNotFound)
}

func TestBulkSetStatusAllSucceed(t *testing.T) {
	repo := newMockRepository()
	for i := 0; i < 5; i++ {
		seedWallpaper(repo, fmt.Sprintf("w%d", i), "W", wallpapers.StatusPending)
	}
	svc := newTestService(repo)

	result, err := svc.BulkSetStatus(context.Background(), []string{"w0", "w1", "w2", "w3", "w4"}, wallpapers.StatusApproved)
	require.NoError(t, err)
	assert.Len(t, result.Updated, 5)
	assert.Empty(t, result.Failed)

	for i := 0; i < 5; i++ {
		w, err := repo.Get(context.Background(), fmt.Sprintf("w%d", i))
		require.NoError(t, err)
		assert.Equal(t, wallpapers.StatusApproved, w.Status)
	}
}

func TestBulkSetStatusPartialFailure(t *testing.T) {
	repo := newMockRepository()
	for i := 0; i < 5; i++ {
		seedWallpaper(repo, fmt.Sprintf("w%d", i), "W", wallpapers.StatusPending)
	}
	repo.failStatusID = "w2"
	svc := newTestService(repo)

	result, err := svc.BulkSetStatus(context.Background(), []string{"w0", "w1", "w2", "w3", "w4"}, wallpapers.StatusApproved)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 5")
	assert.Contains(t, err.Error(), "w2")
	assert.Equal(t, []string{"w0", "w1", "w3", "w4"}, result.Updated)
	assert.Equal(t, []string{"w2"}, result.Failed)

	// Successes stay committed even though the batch reported an error.
	w0, err := repo.Get(context.Background(), "w0")
	require.NoError(t, err)
	assert.Equal(t, wallpapers.StatusApproved, w0.Status)

	// The failed id keeps its prior status.
	w2, err := repo.Get(context.Background(), "w2")
	require.NoError(t, err)
	assert.Equal(t, wallpapers.StatusPending, w2.Status)
}

func TestBulkSetStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.BulkSetStatus(context.Background(), []string{"w0"}, wallpapers.Status("archived"))
	assert.Error(t, err)
}

func TestReindexRewritesAllTerms(t *testing.T) {
	repo := newMockRepository()
	seedWallpaper(repo, "w1", "Misty Pines", wallpapers.StatusApproved)
	seedWallpaper(repo, "w2", "Orbit Glow", wallpapers.StatusApproved)
	svc := newTestService(repo)

	updated, err := svc.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	w1, err := repo.Get(context.Background(), "w1")
	require.NoError(t, err)
	assert.Contains(t, w1.SearchTerms, "pines")
}

func TestUploadRequiresBlobStore(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Upload(context.Background(), wallpapers.UploadRequest{}, "a.jpg", "image/jpeg", 10, bytes.NewReader([]byte("x")))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "blob store"))
}

func TestDeleteUsesRecordedStorageKey(t *testing.T) {
	repo := newMockRepository()
	blobs := &fakeBlobStore{}
	svc := wallpapers.NewService(repo, listing.NewCache(nil, 0), blobs, nil, nil)

	// A signed URL carries a query string; the key recorded at upload
	// time is authoritative, not anything derived from the URL.
	seedWallpaper(repo, "w1", "Misty Pines", wallpapers.StatusApproved)
	repo.wallpapers["w1"].StorageKey = "wallpapers/originals/w1.jpg"
	repo.wallpapers["w1"].ImageURL = "https://cdn.test/wallpapers/originals/w1.jpg?X-Amz-Signature=abc&X-Amz-Expires=900"

	require.NoError(t, svc.Delete(context.Background(), "w1"))

	assert.Equal(t, []string{"wallpapers/originals/w1.jpg", "wallpapers/thumbs/w1.webp"}, blobs.deleted)
}

func TestDeleteSkipsBlobCleanupWithoutStorageKey(t *testing.T) {
	repo := newMockRepository()
	blobs := &fakeBlobStore{}
	svc := wallpapers.NewService(repo, listing.NewCache(nil, 0), blobs, nil, nil)

	seedWallpaper(repo, "w1", "Hosted Elsewhere", wallpapers.StatusApproved)
	repo.wallpapers["w1"].StorageKey = ""
	repo.wallpapers["w1"].ImageURL = "https://images.example.com/w1.png"

	require.NoError(t, svc.Delete(context.Background(), "w1"))

	assert.Empty(t, blobs.deleted, "externally hosted records own no blobs")
}

func TestDownloadURLPresignsRecordedStorageKey(t *testing.T) {
	repo := newMockRepository()
	blobs := &fakeBlobStore{}
	svc := wallpapers.NewService(repo, listing.NewCache(nil, 0), blobs, nil, nil)

	seedWallpaper(repo, "w1", "Misty Pines", wallpapers.StatusApproved)
	repo.wallpapers["w1"].StorageKey = "wallpapers/originals/w1.jpg"
	repo.wallpapers["w1"].ImageURL = "https://cdn.test/wallpapers/originals/w1.jpg?X-Amz-Signature=abc"

	url, err := svc.DownloadURL(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/presigned/wallpapers/originals/w1.jpg", url)
}

func TestDownloadURLFallsBackToImageURL(t *testing.T) {
	repo := newMockRepository()
	blobs := &fakeBlobStore{}
	svc := wallpapers.NewService(repo, listing.NewCache(nil, 0), blobs, nil, nil)

	seedWallpaper(repo, "w1", "Hosted Elsewhere", wallpapers.StatusApproved)
	repo.wallpapers["w1"].StorageKey = ""
	repo.wallpapers["w1"].ImageURL = "https://images.example.com/w1.png"

	url, err := svc.DownloadURL(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/w1.png", url)
}
