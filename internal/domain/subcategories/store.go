package subcategories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bulkwala/internal/db"
	"bulkwala/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Store interface {
	List(ctx context.Context, categoryID string) ([]Subcategory, error)
	GetBySlug(ctx context.Context, slug string) (*Subcategory, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, s *Subcategory) error
	Update(ctx context.Context, slug string, p Patch) (*Subcategory, error)
	SoftDelete(ctx context.Context, slug, deletedBy string) error
	Restore(ctx context.Context, slug string) (*Subcategory, error)
}

type Repository struct {
	db db.TxBeginner
}

func NewRepository(q db.TxBeginner) *Repository {
	return &Repository{db: q}
}

const selectSubcategory = `
	SELECT s.id::text, s.name, s.slug, s.img_url,
	       c.id::text, c.name, c.slug,
	       s.is_deleted, s.deleted_at, s.deleted_by::text, s.created_at, s.updated_at
	FROM subcategories s
	JOIN categories c ON c.id = s.category_id
`

func scanSubcategory(row pgx.Row) (*Subcategory, error) {
	s := &Subcategory{}
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.ImgURL,
		&s.Category.ID, &s.Category.Name, &s.Category.Slug,
		&s.IsDeleted, &s.DeletedAt, &s.DeletedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns live subcategories, optionally only those under categoryID.
func (r *Repository) List(ctx context.Context, categoryID string) ([]Subcategory, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	query := selectSubcategory + ` WHERE s.is_deleted = false`
	args := []any{}
	if categoryID != "" {
		if _, err := uuid.Parse(categoryID); err != nil {
			return []Subcategory{}, nil
		}
		query += ` AND s.category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY s.name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	list := []Subcategory{}
	for rows.Next() {
		s, err := scanSubcategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		list = append(list, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return list, nil
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Subcategory, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	s, err := scanSubcategory(r.db.QueryRow(ctx,
		selectSubcategory+` WHERE s.slug = $1 AND s.is_deleted = false`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubcategoryNotFound
		}
		return nil, fmt.Errorf("get subcategory: %w", err)
	}
	return s, nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM subcategories WHERE slug = $1 AND is_deleted = false)`,
		slug).Scan(&exists)
	return exists, err
}

func (r *Repository) Create(ctx context.Context, s *Subcategory) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `
		INSERT INTO subcategories (id, name, slug, img_url, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query, s.ID, s.Name, s.Slug, s.ImgURL, s.Category.ID).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(store.MapPgError(err), store.ErrConflict) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create subcategory: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, slug string, p Patch) (*Subcategory, error) {
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

	s, err := scanSubcategory(tx.QueryRow(ctx,
		selectSubcategory+` WHERE s.slug = $1 AND s.is_deleted = false FOR UPDATE OF s`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubcategoryNotFound
		}
		return nil, fmt.Errorf("load subcategory: %w", err)
	}

	s.Apply(p)

	err = tx.QueryRow(ctx, `
		UPDATE subcategories
		SET name = $1, img_url = $2, category_id = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at`,
		s.Name, s.ImgURL, s.Category.ID, s.ID).Scan(&s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update subcategory: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

func (r *Repository) SoftDelete(ctx context.Context, slug, deletedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		UPDATE subcategories
		SET is_deleted = true, deleted_at = $2, deleted_by = NULLIF($3, '')::uuid, updated_at = now()
		WHERE slug = $1 AND is_deleted = false`,
		slug, time.Now(), deletedBy)
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("subcategory not found or already deleted: %w", store.ErrNotFound)
	}
	return nil
}

func (r *Repository) Restore(ctx context.Context, slug string) (*Subcategory, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	var id string
	err := r.db.QueryRow(ctx, `
		UPDATE subcategories
		SET is_deleted = false, deleted_at = NULL, deleted_by = NULL, updated_at = now()
		WHERE id = (
			SELECT id FROM subcategories
			WHERE slug = $1 AND is_deleted = true
			ORDER BY deleted_at DESC NULLS LAST
			LIMIT 1
		)
		RETURNING id::text`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotDeleted
		}
		if errors.Is(store.MapPgError(err), store.ErrConflict) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("restore subcategory: %w", err)
	}

	s, err := scanSubcategory(r.db.QueryRow(ctx, selectSubcategory+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reload subcategory: %w", err)
	}
	return s, nil
}
