package categories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bulkwala/internal/db"
	"bulkwala/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the data access abstraction for categories.
type Store interface {
	List(ctx context.Context) ([]Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, slug string, p Patch) (*Category, error)
	SoftDelete(ctx context.Context, slug, deletedBy string) error
}

type Repository struct {
	db db.TxBeginner
}

func NewRepository(q db.TxBeginner) *Repository {
	return &Repository{db: q}
}

// subcategory refs are aggregated so the listing matches the parent
// document shape clients expect.
const selectCategory = `
	SELECT c.id::text, c.name, c.slug, c.img_url, c.banner, c.is_deleted, c.created_at, c.updated_at,
	       COALESCE(
	           json_agg(json_build_object('id', s.id::text, 'name', s.name, 'slug', s.slug) ORDER BY s.name)
	               FILTER (WHERE s.id IS NOT NULL),
	           '[]'::json
	       ) AS subcategories
	FROM categories c
	LEFT JOIN subcategories s ON s.category_id = c.id AND s.is_deleted = false
`

func scanCategory(row pgx.Row) (*Category, error) {
	c := &Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ImgURL, &c.Banner, &c.IsDeleted,
		&c.CreatedAt, &c.UpdatedAt, &c.Subcategories)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, selectCategory+`
		WHERE c.is_deleted = false
		GROUP BY c.id
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	list := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return list, nil
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	row := r.db.QueryRow(ctx, selectCategory+`
		WHERE c.slug = $1 AND c.is_deleted = false
		GROUP BY c.id`, slug)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCategoryNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	row := r.db.QueryRow(ctx, selectCategory+`
		WHERE c.id = $1 AND c.is_deleted = false
		GROUP BY c.id`, id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1 AND is_deleted = false)`,
		slug).Scan(&exists)
	return exists, err
}

func (r *Repository) Create(ctx context.Context, c *Category) error {
	if err := validateCategory(c); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Banner == nil {
		c.Banner = []string{}
	}
	c.Subcategories = []Ref{}

	query := `
		INSERT INTO categories (id, name, slug, img_url, banner)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query, c.ID, c.Name, c.Slug, c.ImgURL, c.Banner).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(store.MapPgError(err), store.ErrConflict) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update loads the live row, applies p and writes every column back inside
// one transaction, so fields absent from p keep their stored values.
func (r *Repository) Update(ctx context.Context, slug string, p Patch) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Printf("warning: rollback failed: %v", err)
		}
	}()

	c := &Category{}
	err = tx.QueryRow(ctx, `
		SELECT id::text, name, slug, img_url, banner, created_at
		FROM categories
		WHERE slug = $1 AND is_deleted = false
		FOR UPDATE`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.ImgURL, &c.Banner, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("load category: %w", err)
	}

	c.Apply(p)
	if err := validateCategory(c); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		UPDATE categories
		SET name = $1, slug = $2, img_url = $3, banner = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`,
		c.Name, c.Slug, c.ImgURL, c.Banner, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(store.MapPgError(err), store.ErrConflict) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	// re-read so the subcategory refs are populated
	return r.GetByID(ctx, c.ID)
}

func (r *Repository) SoftDelete(ctx context.Context, slug, deletedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE categories
		SET is_deleted = true, deleted_at = $2, deleted_by = NULLIF($3, '')::uuid, updated_at = now()
		WHERE slug = $1 AND is_deleted = false`,
		slug, time.Now(), deletedBy)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func validateCategory(c *Category) error {
	if c == nil {
		return fmt.Errorf("%w: %w", errNilCategory, store.ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Slug) == "" {
		return fmt.Errorf("category slug cannot be empty: %w", store.ErrValidation)
	}
	return nil
}
