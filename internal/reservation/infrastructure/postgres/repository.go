package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/application"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/domain"
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

const reservationColumns = `id, user_id, product_id, status, reservation_date, pickup_date, return_date, note, created_at, updated_at`

// Create inserts the reservation and its outbox event in one transaction.
// The product row is locked first: that is both the existence check and the
// per-product mutual exclusion that closes the check-then-write race between
// concurrent creates for intersecting ranges.
func (r *Repository) Create(ctx context.Context, res domain.Reservation, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var productID string
	err = tx.QueryRow(ctx, `SELECT id FROM products WHERE id=$1 FOR UPDATE`, res.ProductID).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalogdomain.ErrProductNotFound
	}
	if err != nil {
		return err
	}

	var conflict bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE product_id = $1
			  AND status = ANY($2)
			  AND pickup_date <= $4
			  AND return_date >= $3
		)`, res.ProductID, statusStrings(domain.ActiveStatuses), res.PickupDate, res.ReturnDate).Scan(&conflict)
	if err != nil {
		return err
	}
	if conflict {
		return domain.ErrDateConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reservations (id, user_id, product_id, status, reservation_date, pickup_date, return_date, note, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		res.ID, res.UserID, res.ProductID, res.Status, res.ReservationDate,
		res.PickupDate, res.ReturnDate, res.Note, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,COALESCE($5,'{}'::jsonb),$6,'pending')`,
		"reservation", res.ID, eventType, payload, headers, traceparent)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Reservation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	res, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return res, err
}

// FindByUser joins product summaries; the inner join drops reservations whose
// product has been removed from the catalog.
func (r *Repository) FindByUser(ctx context.Context, userID string) ([]application.PopulatedReservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.user_id, r.product_id, r.status, r.reservation_date, r.pickup_date, r.return_date, r.note, r.created_at, r.updated_at,
		       p.id, p.title, p.media, p.category, p.price_cents
		FROM reservations r
		JOIN products p ON p.id = r.product_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []application.PopulatedReservation{}
	for rows.Next() {
		var pr application.PopulatedReservation
		if err := rows.Scan(
			&pr.ID, &pr.UserID, &pr.ProductID, &pr.Reservation.Status, &pr.ReservationDate,
			&pr.PickupDate, &pr.ReturnDate, &pr.Note, &pr.CreatedAt, &pr.UpdatedAt,
			&pr.Product.ID, &pr.Product.Title, &pr.Product.Media, &pr.Product.Category, &pr.Product.PriceCents,
		); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (r *Repository) FindOverlapping(ctx context.Context, productID string, pickup, ret time.Time, statuses []domain.Status) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE product_id = $1
		  AND status = ANY($2)
		  AND pickup_date <= $4
		  AND return_date >= $3`,
		productID, statusStrings(statuses), pickup, ret)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// UpdateStatus commits the from -> to transition. The UPDATE is conditional
// on the row still holding from; when it matches nothing, the row either
// vanished or another transition won the race, and the current status decides
// which error the caller gets.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, eventType string, payload []byte, headers map[string]string, traceparent string) (domain.Reservation, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Reservation{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, `
		UPDATE reservations SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2
		RETURNING `+reservationColumns, id, from, to)
	res, err := scanReservation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM reservations WHERE id=$1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		if err != nil {
			return domain.Reservation{}, err
		}
		return domain.Reservation{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, to)
	}
	if err != nil {
		return domain.Reservation{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,COALESCE($5,'{}'::jsonb),$6,'pending')`,
		"reservation", id, eventType, payload, headers, traceparent)
	if err != nil {
		return domain.Reservation{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Reservation{}, err
	}
	return res, nil
}

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID, &res.UserID, &res.ProductID, &res.Status, &res.ReservationDate,
		&res.PickupDate, &res.ReturnDate, &res.Note, &res.CreatedAt, &res.UpdatedAt,
	)
	return res, err
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
