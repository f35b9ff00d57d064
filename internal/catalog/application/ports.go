package application

import (
	"context"

	"github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
)

type ProductRepository interface {
	// List returns the catalog newest-first.
	List(ctx context.Context) ([]domain.Product, error)
	// Get returns domain.ErrProductNotFound for unknown ids.
	Get(ctx context.Context, id string) (domain.Product, error)
	// Related returns products sharing the given product's category,
	// excluding the product itself.
	Related(ctx context.Context, id string) ([]domain.Product, error)
	// Search matches title, category and tags.
	Search(ctx context.Context, query string) ([]domain.Product, error)
}
