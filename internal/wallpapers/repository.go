package wallpapers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
)

var (
	ErrNotFound      = errors.New("wallpaper not found")
	ErrAlreadyExists = errors.New("wallpaper already exists")
)

// Repository provides wallpaper persistence.
type Repository interface {
	List(ctx context.Context, q listing.Query) (listing.Page[Wallpaper], error)
	Get(ctx context.Context, id string) (*Wallpaper, error)
	ListByIDs(ctx context.Context, ids []string) ([]Wallpaper, error)
	Create(ctx context.Context, w Wallpaper) error
	Update(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status Status) error
	AllForReindex(ctx context.Context) ([]Wallpaper, error)
	SetSearchTerms(ctx context.Context, id string, terms []string) error
}

// filterColumns whitelists the equality filters the accessor accepts.
var filterColumns = map[string]string{
	"category": "category",
	"status":   "status",
	"author":   "author",
}

// sortColumns whitelists sortable fields and their SQL expressions.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"name":       "lower(name)",
	"downloads":  "downloads",
	"likes":      "likes",
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const wallpaperColumns = `id, name, description, image_url, thumbnail_url, storage_key, category, tags, author, status,
	width, height, size_bytes, downloads, likes, search_terms, created_at, updated_at`

func (r *repository) List(ctx context.Context, q listing.Query) (listing.Page[Wallpaper], error) {
	var page listing.Page[Wallpaper]

	sortExpr, ok := sortColumns[q.SortField]
	if !ok {
		q.SortField = "created_at"
		sortExpr = "created_at"
	}
	sig := q.Signature(Kind)

	var conditions []string
	var args []any
	argPos := 1

	for field, value := range q.Filters {
		col, ok := filterColumns[field]
		if !ok {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, value)
		argPos++
	}

	if q.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(lower(name) LIKE $%d OR search_terms @> ARRAY[$%d]::text[])", argPos, argPos+1))
		args = append(args, listing.EscapeLike(q.Search)+"%", q.Search)
		argPos += 2
	}

	if q.Cursor != "" {
		cur, err := listing.DecodeCursor(q.Cursor, sig)
		if err != nil {
			return page, err
		}
		key, err := cursorKeyArg(q.SortField, cur.Key)
		if err != nil {
			return page, shared.ErrCursorMismatch
		}
		op := "<"
		if q.SortDirection == listing.SortAsc {
			op = ">"
		}
		conditions = append(conditions, fmt.Sprintf("(%s, id) %s ($%d, $%d)", sortExpr, op, argPos, argPos+1))
		args = append(args, key, cur.ID)
		argPos += 2
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	dir := "DESC"
	if q.SortDirection == listing.SortAsc {
		dir = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM wallpapers %s ORDER BY %s %s, id %s LIMIT $%d`,
		wallpaperColumns, whereClause, sortExpr, dir, dir, argPos)
	args = append(args, q.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		w, err := scanWallpaper(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, w)
	}
	if err := rows.Err(); err != nil {
		return page, err
	}

	page.Seal(q.PageSize, sig, func(w Wallpaper) (string, string) {
		return cursorKeyValue(q.SortField, w), w.ID
	})
	return page, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Wallpaper, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+wallpaperColumns+` FROM wallpapers WHERE id = $1`, id)
	w, err := scanWallpaper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// ListByIDs resolves weak references from collections. Missing ids are
// silently absent from the result.
func (r *repository) ListByIDs(ctx context.Context, ids []string) ([]Wallpaper, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+wallpaperColumns+` FROM wallpapers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]Wallpaper, len(ids))
	for rows.Next() {
		w, err := scanWallpaper(rows)
		if err != nil {
			return nil, err
		}
		byID[w.ID] = w
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve the reference order from the collection.
	out := make([]Wallpaper, 0, len(byID))
	for _, id := range ids {
		if w, ok := byID[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *repository) Create(ctx context.Context, w Wallpaper) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wallpapers (id, name, description, image_url, thumbnail_url, storage_key, category, tags, author, status,
			width, height, size_bytes, downloads, likes, search_terms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		w.ID, w.Name, w.Description, w.ImageURL, w.ThumbnailURL, w.StorageKey, w.Category, w.Tags, w.Author, string(w.Status),
		w.Width, w.Height, w.SizeBytes, w.Downloads, w.Likes, w.SearchTerms, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// updateColumns whitelists partially updatable fields.
var updateColumns = map[string]string{
	"name":          "name",
	"description":   "description",
	"image_url":     "image_url",
	"thumbnail_url": "thumbnail_url",
	"category":      "category",
	"tags":          "tags",
	"author":        "author",
	"status":        "status",
	"width":         "width",
	"height":        "height",
	"size_bytes":    "size_bytes",
	"search_terms":  "search_terms",
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]any) error {
	query := "UPDATE wallpapers SET updated_at = now()"
	var args []any
	argPos := 1

	// Deterministic order keeps queries stable for the same update set.
	for _, field := range sortedKeys(updates) {
		col, ok := updateColumns[field]
		if !ok {
			continue
		}
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, updates[field])
		argPos++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record only. Collections keep their id reference;
// detail reads tolerate the dangling entry.
func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wallpapers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE wallpapers SET status = $1, updated_at = now() WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AllForReindex streams the fields needed to recompute search terms.
func (r *repository) AllForReindex(ctx context.Context) ([]Wallpaper, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, tags, author, category FROM wallpapers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Wallpaper
	for rows.Next() {
		var w Wallpaper
		if err := rows.Scan(&w.ID, &w.Name, &w.Tags, &w.Author, &w.Category); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *repository) SetSearchTerms(ctx context.Context, id string, terms []string) error {
	_, err := r.pool.Exec(ctx, `UPDATE wallpapers SET search_terms = $1 WHERE id = $2`, terms, id)
	return err
}

func scanWallpaper(row pgx.Row) (Wallpaper, error) {
	var w Wallpaper
	var description, thumbnail pgtype.Text
	var status string
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&w.ID, &w.Name, &description, &w.ImageURL, &thumbnail, &w.StorageKey, &w.Category, &w.Tags, &w.Author, &status,
		&w.Width, &w.Height, &w.SizeBytes, &w.Downloads, &w.Likes, &w.SearchTerms, &createdAt, &updatedAt,
	)
	if err != nil {
		return w, err
	}
	if description.Valid {
		w.Description = description.String
	}
	if thumbnail.Valid {
		w.ThumbnailURL = thumbnail.String
	}
	w.Status = Status(status)
	if createdAt.Valid {
		w.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		w.UpdatedAt = updatedAt.Time
	}
	return w, nil
}

// cursorKeyValue serialises the sort key of the last item on a page.
func cursorKeyValue(sortField string, w Wallpaper) string {
	switch sortField {
	case "name":
		return strings.ToLower(w.Name)
	case "downloads":
		return strconv.FormatInt(w.Downloads, 10)
	case "likes":
		return strconv.FormatInt(w.Likes, 10)
	default:
		return w.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
}

// cursorKeyArg converts a serialised sort key back into a typed SQL arg.
func cursorKeyArg(sortField, key string) (any, error) {
	switch sortField {
	case "name":
		return key, nil
	case "downloads", "likes":
		return strconv.ParseInt(key, 10, 64)
	default:
		return time.Parse(time.RFC3339Nano, key)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
