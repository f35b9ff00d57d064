package application

import (
	"context"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
)

type Service struct {
	repo    WishlistRepository
	catalog ProductCatalog
}

func NewService(repo WishlistRepository, catalog ProductCatalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

type ToggleResult struct {
	Liked    bool     `json:"liked"`
	Wishlist []string `json:"wishlist"`
}

// Toggle rejects unknown product ids before touching the wishlist, so a
// stale client cannot pin deleted products.
func (s *Service) Toggle(ctx context.Context, userID, productID string) (ToggleResult, error) {
	if _, err := s.catalog.Summary(ctx, productID); err != nil {
		return ToggleResult{}, err
	}
	liked, ids, err := s.repo.Toggle(ctx, userID, productID)
	if err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Liked: liked, Wishlist: ids}, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]catalogdomain.Summary, error) {
	return s.repo.List(ctx, userID)
}
