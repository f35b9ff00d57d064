package postgres

import (
	"context"
	"log/slog"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
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

func (r *Repository) Toggle(ctx context.Context, userID, productID string) (bool, []string, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return false, nil, err
	}

	liked := ct.RowsAffected() == 0
	if liked {
		_, err = tx.Exec(ctx, `
			INSERT INTO wishlist_items (user_id, product_id) VALUES ($1,$2)
			ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
		if err != nil {
			return false, nil, err
		}
	}

	rows, err := tx.Query(ctx, `SELECT product_id FROM wishlist_items WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return false, nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return false, nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return false, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, nil, err
	}
	return liked, ids, nil
}

func (r *Repository) List(ctx context.Context, userID string) ([]catalogdomain.Summary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.title, p.media, p.category, p.price_cents
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []catalogdomain.Summary{}
	for rows.Next() {
		var s catalogdomain.Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.Media, &s.Category, &s.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
