package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDropsIgnoredFilters(t *testing.T) {
	q := Query{
		Filters: map[string]string{
			"category": "Nature",
			"status":   "all",
			"author":   "",
		},
	}

	got := q.Normalize(12)

	assert.Equal(t, map[string]string{"category": "Nature"}, got.Filters)
}

func TestNormalizePageSize(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"zero uses default", 0, 12},
		{"negative uses default", -3, 12},
		{"within range kept", 40, 40},
		{"clamped to max", 500, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Query{PageSize: tc.in}.Normalize(12)
			assert.Equal(t, tc.want, got.PageSize)
		})
	}
}

func TestNormalizeSearchAndDirection(t *testing.T) {
	got := Query{Search: "  MounTain ", SortDirection: "sideways"}.Normalize(12)

	assert.Equal(t, "mountain", got.Search)
	assert.Equal(t, SortDesc, got.SortDirection)
}

func TestSignatureStable(t *testing.T) {
	a := Query{
		Filters:       map[string]string{"category": "Nature", "status": "approved"},
		SortField:     "created_at",
		SortDirection: SortDesc,
	}
	b := Query{
		Filters:       map[string]string{"status": "approved", "category": "Nature"},
		SortField:     "created_at",
		SortDirection: SortDesc,
	}

	// Map iteration order must not affect the digest.
	assert.Equal(t, a.Signature("wallpapers"), b.Signature("wallpapers"))
}

func TestSignatureChangesWithQueryShape(t *testing.T) {
	base := Query{
		Filters:       map[string]string{"category": "Nature"},
		SortField:     "created_at",
		SortDirection: SortDesc,
	}
	sig := base.Signature("wallpapers")

	filtered := base
	filtered.Filters = map[string]string{"category": "Space"}
	assert.NotEqual(t, sig, filtered.Signature("wallpapers"))

	sorted := base
	sorted.SortField = "downloads"
	assert.NotEqual(t, sig, sorted.Signature("wallpapers"))

	searched := base
	searched.Search = "mo"
	assert.NotEqual(t, sig, searched.Signature("wallpapers"))

	assert.NotEqual(t, sig, base.Signature("categories"))
}

type sealItem struct {
	Name string
	ID   string
}

func sealCursor(it sealItem) (string, string) { return it.Name, it.ID }

func TestSealFullPage(t *testing.T) {
	page := Page[sealItem]{Items: []sealItem{{"a", "1"}, {"b", "2"}, {"c", "3"}}}

	page.Seal(3, "sig1", sealCursor)

	assert.True(t, page.HasMore, "a full page signals more data")
	cur, err := DecodeCursor(page.NextCursor, "sig1")
	require.NoError(t, err)
	assert.Equal(t, "c", cur.Key, "cursor must reference the last item")
	assert.Equal(t, "3", cur.ID)
}

func TestSealShortPage(t *testing.T) {
	page := Page[sealItem]{Items: []sealItem{{"a", "1"}}}

	page.Seal(3, "sig1", sealCursor)

	assert.False(t, page.HasMore, "a short page means the listing is exhausted")
	cur, err := DecodeCursor(page.NextCursor, "sig1")
	require.NoError(t, err)
	assert.Equal(t, "1", cur.ID)
}

func TestSealEmptyPage(t *testing.T) {
	var page Page[sealItem]

	page.Seal(3, "sig1", sealCursor)

	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor, "an empty page mints no continuation")
}

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"mountain", "mountain"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{"%_", `\%\_`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EscapeLike(tc.in), tc.in)
	}
}
