package application

import (
	"context"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
)

type WishlistRepository interface {
	// Toggle flips membership and returns whether the product is now liked
	// plus the resulting wishlist product ids, oldest-first.
	Toggle(ctx context.Context, userID, productID string) (liked bool, ids []string, err error)
	// List returns product summaries for the user's wishlist, skipping
	// products removed from the catalog.
	List(ctx context.Context, userID string) ([]catalogdomain.Summary, error)
}

type ProductCatalog interface {
	Summary(ctx context.Context, productID string) (catalogdomain.Summary, error)
}
