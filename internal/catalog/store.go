package catalog

import (
	"context"
	"errors"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Filter narrows a product listing. The zero value lists every active product.
type Filter struct {
	Category        domain.Category
	Search          string
	IncludeInactive bool
}

// Store is the catalog accessor: product reads plus the admin-side mutations.
// Stock is NOT mutated through this interface during checkout; the order
// repository decrements it inside the order transaction.
type Store interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, f Filter) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	SetActive(ctx context.Context, id int64, active bool) error
}
