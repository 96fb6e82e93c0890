package catalog

import (
	"errors"
	"time"
)

// DefaultImageURL se usa cuando el documento no trae imagen.
const DefaultImageURL = "/assets/default.jpg"

type Category string

const (
	CategoryTortas    Category = "tortas"
	CategoryVasos     Category = "vasos"
	CategoryAlfajores Category = "alfajores"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryTortas, CategoryVasos, CategoryAlfajores:
		return true
	}
	return false
}

var (
	ErrNotFound    = errors.New("product not found")
	ErrUnknownSize = errors.New("unknown product size")
	ErrNoPrice     = errors.New("product has no price for this selection")
)

// Doc is the raw stored shape of a product. Every field besides ID and Name
// may be absent in old documents; callers never consume a Doc directly,
// Normalize turns it into a Product first.
type Doc struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Price       *int64
	Sizes       map[string]int64
	Stock       *int
	ImageURL    string
	Images      []string
	FlavorTags  []string
	IsFeatured  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is the normalized catalog entity. Price is nil when the product is
// priced per size; Stock nil means unlimited.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    Category         `json:"category"`
	Price       *int64           `json:"price"`
	Sizes       map[string]int64 `json:"sizes"`
	Stock       *int             `json:"stock"`
	ImageURL    string           `json:"imageUrl"`
	Images      []string         `json:"images"`
	FlavorTags  []string         `json:"flavorTags"`
	IsFeatured  bool             `json:"isFeatured"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Normalize rellena los campos ausentes del documento con valores por defecto.
func Normalize(d Doc) Product {
	p := Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       d.Price,
		Sizes:       d.Sizes,
		Stock:       d.Stock,
		ImageURL:    d.ImageURL,
		Images:      d.Images,
		FlavorTags:  d.FlavorTags,
		IsFeatured:  d.IsFeatured,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if p.ImageURL == "" {
		p.ImageURL = DefaultImageURL
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.FlavorTags == nil {
		p.FlavorTags = []string{}
	}
	if len(p.Sizes) == 0 {
		p.Sizes = nil
	}
	return p
}

// UnitPrice resolves the effective price for a selection. Sized products
// require a size that names one of the declared labels; flat-priced products
// ignore size.
func (p Product) UnitPrice(size string) (int64, error) {
	if p.Sizes != nil {
		price, ok := p.Sizes[size]
		if !ok {
			return 0, ErrUnknownSize
		}
		return price, nil
	}
	if p.Price == nil {
		return 0, ErrNoPrice
	}
	return *p.Price, nil
}

// HasStockFor reports whether qty units fit in the known stock. A product
// without a stock figure is treated as unlimited.
func (p Product) HasStockFor(qty int) bool {
	if p.Stock == nil {
		return true
	}
	return qty <= *p.Stock
}
