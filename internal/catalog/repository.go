package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Filter struct {
	Category Category
}

type Repository interface {
	GetProducts(ctx context.Context, filter Filter) ([]Product, error)
	GetFeatured(ctx context.Context, limit int) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, doc Doc) (string, error)
	Update(ctx context.Context, id string, doc Doc) error
	Delete(ctx context.Context, id string) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, name, description, category, price, sizes, stock, image_url, images, flavor_tags, is_featured, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var d Doc
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.Category,
		&d.Price,
		&d.Sizes,
		&d.Stock,
		&d.ImageURL,
		&d.Images,
		&d.FlavorTags,
		&d.IsFeatured,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	return Normalize(d), nil
}

func (r *postgresRepository) GetProducts(ctx context.Context, filter Filter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if filter.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, string(filter.Category))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return products, nil
}

func (r *postgresRepository) GetFeatured(ctx context.Context, limit int) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_featured = true LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query featured products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan featured product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating featured products: %w", err)
	}
	return products, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresRepository) Create(ctx context.Context, doc Doc) (string, error) {
	genID, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("repository: failed to generate product ID: %w", err)
	}
	id := genID.String()

	now := time.Now().UTC()
	query := `
		INSERT INTO products (id, name, description, category, price, sizes, stock, image_url, images, flavor_tags, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.Exec(ctx, query,
		id,
		doc.Name,
		doc.Description,
		string(doc.Category),
		doc.Price,
		doc.Sizes,
		doc.Stock,
		doc.ImageURL,
		doc.Images,
		doc.FlavorTags,
		doc.IsFeatured,
		now,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("repository: failed to insert product: %w", err)
	}

	log.Info().Str("product_id", id).Str("name", doc.Name).Msg("repository: product created")
	return id, nil
}

func (r *postgresRepository) Update(ctx context.Context, id string, doc Doc) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, sizes = $5,
		    stock = $6, image_url = $7, images = $8, flavor_tags = $9, is_featured = $10, updated_at = $11
		WHERE id = $12
	`
	cmdTag, err := r.db.Exec(ctx, query,
		doc.Name,
		doc.Description,
		string(doc.Category),
		doc.Price,
		doc.Sizes,
		doc.Stock,
		doc.ImageURL,
		doc.Images,
		doc.FlavorTags,
		doc.IsFeatured,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
