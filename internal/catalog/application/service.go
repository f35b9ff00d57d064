package application

import (
	"context"

	"github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
)

// Service exposes the read-only product catalog. Writes happen in the admin
// panel; this side only projects.
type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Related(ctx context.Context, id string) ([]domain.Product, error) {
	return s.repo.Related(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return s.repo.Search(ctx, query)
}

// Summary is the existence-check-plus-display-join used by the reservation
// and wishlist modules.
func (s *Service) Summary(ctx context.Context, id string) (domain.Summary, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Summary{}, err
	}
	return p.Summary(), nil
}
