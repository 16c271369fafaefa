package collections

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
)

var (
	ErrNotFound      = errors.New("collection not found")
	ErrAlreadyExists = errors.New("collection already exists")
)

// Repository provides collection persistence.
type Repository interface {
	List(ctx context.Context, q listing.Query) (listing.Page[Collection], error)
	Get(ctx context.Context, id string) (*Collection, error)
	Create(ctx context.Context, c Collection) error
	Update(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const collectionColumns = `id, name, description, cover_image_url, wallpaper_ids, is_public, created_at, updated_at`

func (r *repository) List(ctx context.Context, q listing.Query) (listing.Page[Collection], error) {
	var page listing.Page[Collection]
	sig := q.Signature(Kind)

	var conditions []string
	var args []any
	argPos := 1

	if v, ok := q.Filters["is_public"]; ok {
		public, err := strconv.ParseBool(v)
		if err == nil {
			conditions = append(conditions, fmt.Sprintf("is_public = $%d", argPos))
			args = append(args, public)
			argPos++
		}
	}

	if q.Search != "" {
		conditions = append(conditions, fmt.Sprintf("lower(name) LIKE $%d", argPos))
		args = append(args, listing.EscapeLike(q.Search)+"%")
		argPos++
	}

	if q.Cursor != "" {
		cur, err := listing.DecodeCursor(q.Cursor, sig)
		if err != nil {
			return page, err
		}
		key, err := time.Parse(time.RFC3339Nano, cur.Key)
		if err != nil {
			return page, err
		}
		op := "<"
		if q.SortDirection == listing.SortAsc {
			op = ">"
		}
		conditions = append(conditions, fmt.Sprintf("(created_at, id) %s ($%d, $%d)", op, argPos, argPos+1))
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

	query := fmt.Sprintf(`SELECT %s FROM collections %s ORDER BY created_at %s, id %s LIMIT $%d`,
		collectionColumns, whereClause, dir, dir, argPos)
	args = append(args, q.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, c)
	}
	if err := rows.Err(); err != nil {
		return page, err
	}

	page.Seal(q.PageSize, sig, func(c Collection) (string, string) {
		return c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID
	})
	return page, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Collection, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = $1`, id)
	c, err := scanCollection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c Collection) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO collections (id, name, description, cover_image_url, wallpaper_ids, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.Description, c.CoverImageURL, c.WallpaperIDs, c.IsPublic, c.CreatedAt, c.UpdatedAt,
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

var updateColumns = map[string]string{
	"name":            "name",
	"description":     "description",
	"cover_image_url": "cover_image_url",
	"wallpaper_ids":   "wallpaper_ids",
	"is_public":       "is_public",
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]any) error {
	query := "UPDATE collections SET updated_at = now()"
	var args []any
	argPos := 1

	for field, col := range updateColumns {
		if v, ok := updates[field]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
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

// Delete removes the collection only; referenced wallpapers stay.
func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCollection(row pgx.Row) (Collection, error) {
	var c Collection
	var description, cover pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&c.ID, &c.Name, &description, &cover, &c.WallpaperIDs, &c.IsPublic, &createdAt, &updatedAt)
	if err != nil {
		return c, err
	}
	if description.Valid {
		c.Description = description.String
	}
	if cover.Valid {
		c.CoverImageURL = cover.String
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return c, nil
}
