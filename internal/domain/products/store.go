package products

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"bulkwala/internal/db"
	"bulkwala/internal/domain/categories"
	"bulkwala/internal/params"
	"bulkwala/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store is the data access abstraction for the products domain.
type Store interface {
	List(ctx context.Context, f Filter) (Page, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, slug string, patch Patch) (*Product, error)
	Delete(ctx context.Context, slug string) error
}

type Repository struct {
	db db.TxBeginner
}

func NewRepository(q db.TxBeginner) *Repository {
	return &Repository{db: q}
}

const productColumns = `
	p.id::text, p.title, p.slug, p.description, p.price, p.discount_price, p.stock,
	c.id::text, c.name, c.slug,
	s.id::text, s.name, s.slug,
	p.images, p.videos, p.tags, p.is_active, p.is_featured, p.sku, p.color,
	p.generic_name, p.country_of_origin, p.manufacturer_name,
	COALESCE(p.created_by::text, ''), p.gst_slab, p.created_at, p.updated_at
`

const productJoins = `
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN subcategories s ON s.id = p.subcategory_id
`

func scanProduct(row pgx.Row, extra ...any) (*Product, error) {
	p := &Product{}
	var subID, subName, subSlug *string
	dest := []any{
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Price, &p.DiscountPrice, &p.Stock,
		&p.Category.ID, &p.Category.Name, &p.Category.Slug,
		&subID, &subName, &subSlug,
		&p.Images, &p.Videos, &p.Tags, &p.IsActive, &p.IsFeatured, &p.SKU, &p.Color,
		&p.GenericName, &p.CountryOfOrigin, &p.ManufacturerName,
		&p.CreatedBy, &p.GSTSlab, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if subID != nil {
		p.Subcategory = &categories.Ref{ID: *subID, Name: deref(subName), Slug: deref(subSlug)}
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// whereClause renders f as SQL. It mirrors Filter.Matches, active flag included.
func whereClause(f Filter) (string, []any) {
	conds := []string{"p.is_active = true"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		n := arg(f.Category)
		conds = append(conds, fmt.Sprintf("(c.id::text = %s OR c.slug = %s)", n, n))
	}
	if f.Subcategory != "" {
		n := arg(f.Subcategory)
		conds = append(conds, fmt.Sprintf("(s.id::text = %s OR s.slug = %s)", n, n))
	}
	if f.Search != "" {
		n := arg("%" + escapeLike(f.Search) + "%")
		conds = append(conds, fmt.Sprintf(
			"(p.title ILIKE %s OR p.description ILIKE %s OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE %s))",
			n, n, n))
	}
	if f.MinPrice.Valid {
		conds = append(conds, "COALESCE(NULLIF(p.discount_price, 0), p.price) >= "+arg(f.MinPrice.Decimal))
	}
	if f.MaxPrice.Valid {
		conds = append(conds, "COALESCE(NULLIF(p.discount_price, 0), p.price) <= "+arg(f.MaxPrice.Decimal))
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns a page of products and the pre-pagination total.
// It uses COUNT(*) OVER() when rows exist; if the page is past the end it
// falls back to a separate COUNT(*) to avoid reporting zero.
func (r *Repository) List(ctx context.Context, f Filter) (Page, error) {
	f.Pagination = params.New(f.Page, f.Limit)

	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	where, args := whereClause(f)
	n := len(args)
	query := "SELECT" + productColumns + ", COUNT(*) OVER() AS total_count" + productJoins + where +
		fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", n+1, n+2)

	rows, err := r.db.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return Page{}, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	items := []Product{}
	total := 0
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return Page{}, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("rows iteration: %w", err)
	}

	if len(items) == 0 && f.Offset > 0 {
		countQ := "SELECT COUNT(*)" + productJoins + where
		if err := r.db.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
			return Page{}, fmt.Errorf("count products: %w", err)
		}
	}
	return NewPage(items, total, f.Pagination), nil
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, "SELECT"+productColumns+productJoins+" WHERE p.slug = $1", slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *Repository) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	normalizeSlices(p)

	query := `
		INSERT INTO products (
			id, title, slug, description, price, discount_price, stock, category_id, subcategory_id,
			images, videos, tags, is_active, is_featured, sku, color,
			generic_name, country_of_origin, manufacturer_name, created_by, gst_slab
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NULLIF($20, '')::uuid, $21)
		RETURNING created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		p.ID, p.Title, p.Slug, p.Description, p.Price, p.DiscountPrice, p.Stock, p.Category.ID, subcategoryID(p),
		p.Images, p.Videos, p.Tags, p.IsActive, p.IsFeatured, p.SKU, p.Color,
		p.GenericName, p.CountryOfOrigin, p.ManufacturerName, p.CreatedBy, p.GSTSlab,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapWriteError("create product", err)
	}
	return nil
}

// Update applies patch to the stored row inside a transaction; columns the
// patch does not mention are written back unchanged.
func (r *Repository) Update(ctx context.Context, slug string, patch Patch) (*Product, error) {
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

	p, err := scanProduct(tx.QueryRow(ctx,
		"SELECT"+productColumns+productJoins+" WHERE p.slug = $1 FOR UPDATE OF p", slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	if err := p.Apply(patch); err != nil {
		return nil, err
	}
	normalizeSlices(p)

	err = tx.QueryRow(ctx, `
		UPDATE products SET
			title = $1, description = $2, price = $3, discount_price = $4, stock = $5,
			category_id = $6, subcategory_id = $7, images = $8, videos = $9, tags = $10,
			is_active = $11, is_featured = $12, sku = $13, color = $14, generic_name = $15,
			country_of_origin = $16, manufacturer_name = $17, gst_slab = $18, updated_at = now()
		WHERE id = $19
		RETURNING updated_at`,
		p.Title, p.Description, p.Price, p.DiscountPrice, p.Stock,
		p.Category.ID, subcategoryID(p), p.Images, p.Videos, p.Tags,
		p.IsActive, p.IsFeatured, p.SKU, p.Color, p.GenericName,
		p.CountryOfOrigin, p.ManufacturerName, p.GSTSlab, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return nil, mapWriteError("update product", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func subcategoryID(p *Product) *string {
	if p.Subcategory == nil || p.Subcategory.ID == "" {
		return nil
	}
	return &p.Subcategory.ID
}

func normalizeSlices(p *Product) {
	for _, s := range []*[]string{&p.Images, &p.Videos, &p.Tags, &p.Color} {
		if *s == nil {
			*s = []string{}
		}
	}
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "slug") {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("%s: %w", op, store.MapPgError(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
