package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

const defaultFeaturedCount = 3

type Service interface {
	GetProducts(ctx context.Context, filter Filter) ([]Product, error)
	GetFeaturedProducts(ctx context.Context, count int) ([]Product, error)
	GetProductByID(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, doc Doc) (string, error)
	UpdateProduct(ctx context.Context, id string, doc Doc) error
	DeleteProduct(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProducts(ctx context.Context, filter Filter) ([]Product, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, fmt.Errorf("service: unknown category %q", filter.Category)
	}

	products, err := s.repo.GetProducts(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("category", string(filter.Category)).Msg("service: failed to fetch products")
		return nil, fmt.Errorf("service: failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *service) GetFeaturedProducts(ctx context.Context, count int) ([]Product, error) {
	if count <= 0 {
		count = defaultFeaturedCount
	}

	products, err := s.repo.GetFeatured(ctx, count)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch featured products")
		return nil, fmt.Errorf("service: failed to fetch featured products: %w", err)
	}
	return products, nil
}

func (s *service) GetProductByID(ctx context.Context, id string) (Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}
	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, doc Doc) (string, error) {
	if err := validateDoc(doc); err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("service: failed to create product: %w", err)
	}
	return id, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, doc Doc) error {
	if err := validateDoc(doc); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, doc); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to update product: %w", err)
	}
	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to delete product: %w", err)
	}
	return nil
}

// validateDoc exige lo mínimo que el catálogo necesita: nombre, categoría
// válida y un precio fijo o un mapa de tamaños, nunca ninguno de los dos.
func validateDoc(doc Doc) error {
	if doc.Name == "" {
		return errors.New("service: product name is required")
	}
	if !doc.Category.IsValid() {
		return fmt.Errorf("service: unknown category %q", doc.Category)
	}
	if doc.Price == nil && len(doc.Sizes) == 0 {
		return errors.New("service: product needs a price or a sizes map")
	}
	if doc.Price != nil && *doc.Price < 0 {
		return errors.New("service: product price cannot be negative")
	}
	for size, price := range doc.Sizes {
		if price < 0 {
			return fmt.Errorf("service: price for size %q cannot be negative", size)
		}
	}
	if doc.Stock != nil && *doc.Stock < 0 {
		return errors.New("service: product stock cannot be negative")
	}
	return nil
}
