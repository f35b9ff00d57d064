package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const productColumns = `id, title, description, media, category, tags, price_cents, expense_cents, created_at, updated_at`

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func (r *Repository) Related(ctx context.Context, id string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE category = (SELECT category FROM products WHERE id=$1)
		  AND id <> $1
		ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE title ILIKE '%' || $1 || '%'
		   OR category ILIKE '%' || $1 || '%'
		   OR $1 ILIKE ANY(tags)
		ORDER BY created_at DESC`, query)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Media, &p.Category, &p.Tags,
		&p.PriceCents, &p.ExpenseCents, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
