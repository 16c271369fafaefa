package categories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
)

type mockRepository struct {
	categories  map[string]*Category
	listQueries []listing.Query
	listResult  listing.Page[Category]
}

func newMockRepository() *mockRepository {
	return &mockRepository{categories: make(map[string]*Category)}
}

func (m *mockRepository) List(ctx context.Context, q listing.Query) (listing.Page[Category], error) {
	m.listQueries = append(m.listQueries, q)
	return m.listResult, nil
}

func (m *mockRepository) Get(ctx context.Context, id string) (*Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, c Category) error {
	m.categories[c.ID] = &c
	return nil
}

func (m *mockRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	c, ok := m.categories[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["description"]; ok {
		c.Description = v.(string)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, listing.NewCache(nil, 0), nil)
}

func TestListDefaultsToNameAscending(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), listing.Query{})
	require.NoError(t, err)

	require.Len(t, repo.listQueries, 1)
	q := repo.listQueries[0]
	assert.Equal(t, "name", q.SortField)
	assert.Equal(t, listing.SortAsc, q.SortDirection)
	assert.Equal(t, DefaultPageSize, q.PageSize)
}

func TestListDescendingWhenRequested(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), listing.Query{SortDirection: listing.SortDesc})
	require.NoError(t, err)

	require.Len(t, repo.listQueries, 1)
	assert.Equal(t, listing.SortDesc, repo.listQueries[0].SortDirection)
}

func TestCreateRequiresName(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "   "})
	assert.Error(t, err)
}

func TestCreateTrimsName(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	c, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "  Nature  "})
	require.NoError(t, err)
	assert.Equal(t, "Nature", c.Name)
	assert.NotEmpty(t, c.ID)
}

func TestUpdateReturnsFreshRecord(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Nature"})
	require.NoError(t, err)

	name := "Landscapes"
	updated, err := svc.Update(context.Background(), created.ID, UpdateCategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Landscapes", updated.Name)
}

func TestDeleteMissingCategory(t *testing.T) {
	svc := newTestService(newMockRepository())

	err := svc.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
