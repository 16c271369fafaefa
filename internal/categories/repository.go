package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/listing"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrAlreadyExists = errors.New("category already exists")
)

// Repository provides category persistence.
type Repository interface {
	List(ctx context.Context, q listing.Query) (listing.Page[Category], error)
	Get(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, c Category) error
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

const categoryColumns = `c.id, c.name, c.description, c.cover_image_url,
	(SELECT count(*) FROM wallpapers w WHERE w.category = c.name), c.created_at, c.updated_at`

// List pages categories ordered by name ascending. Categories are the
// one kind sorted by name instead of creation time.
func (r *repository) List(ctx context.Context, q listing.Query) (listing.Page[Category], error) {
	var page listing.Page[Category]
	sig := q.Signature(Kind)

	var conditions []string
	var args []any
	argPos := 1

	if q.Search != "" {
		conditions = append(conditions, fmt.Sprintf("lower(c.name) LIKE $%d", argPos))
		args = append(args, listing.EscapeLike(q.Search)+"%")
		argPos++
	}

	if q.Cursor != "" {
		cur, err := listing.DecodeCursor(q.Cursor, sig)
		if err != nil {
			return page, err
		}
		op := ">"
		if q.SortDirection == listing.SortDesc {
			op = "<"
		}
		conditions = append(conditions, fmt.Sprintf("(lower(c.name), c.id) %s ($%d, $%d)", op, argPos, argPos+1))
		args = append(args, cur.Key, cur.ID)
		argPos += 2
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}
	dir := "ASC"
	if q.SortDirection == listing.SortDesc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM categories c %s ORDER BY lower(c.name) %s, c.id %s LIMIT $%d`,
		categoryColumns, whereClause, dir, dir, argPos)
	args = append(args, q.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, c)
	}
	if err := rows.Err(); err != nil {
		return page, err
	}

	page.Seal(q.PageSize, sig, func(c Category) (string, string) {
		return strings.ToLower(c.Name), c.ID
	})
	return page, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories c WHERE c.id = $1`, id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c Category) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, name, description, cover_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.CoverImageURL, c.CreatedAt, c.UpdatedAt,
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
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]any) error {
	query := "UPDATE categories SET updated_at = now()"
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

// Delete removes the category only. Wallpapers keep their category name
// as a weak reference.
func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	var description, cover pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&c.ID, &c.Name, &description, &cover, &c.WallpaperCount, &createdAt, &updatedAt)
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
