package application

import (
	"context"
	"time"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/domain"
	"github.com/CodeKhoVL/DoAn-Store/pkg/auth"
)

// PopulatedReservation is a reservation with the denormalized product fields
// the storefront renders.
type PopulatedReservation struct {
	domain.Reservation
	Product catalogdomain.Summary `json:"product"`
}

type Repository interface {
	// Create persists a new reservation and its outbox event in one
	// transaction. The product row is locked for the duration, so the
	// overlap check and the insert are mutually exclusive per product.
	// Returns catalog ErrProductNotFound or ErrDateConflict.
	Create(ctx context.Context, r domain.Reservation, eventType string, payload []byte, headers map[string]string, traceparent string) error

	FindByID(ctx context.Context, id string) (domain.Reservation, error)

	// FindByUser returns the user's reservations newest-created-first,
	// joined with product summaries. Reservations whose product no longer
	// exists are omitted.
	FindByUser(ctx context.Context, userID string) ([]PopulatedReservation, error)

	// FindOverlapping returns reservations for the product whose inclusive
	// [pickup, return] interval intersects the candidate one and whose
	// status is in statuses.
	FindOverlapping(ctx context.Context, productID string, pickup, ret time.Time, statuses []domain.Status) ([]domain.Reservation, error)

	// UpdateStatus persists the from -> to transition, bumps updated_at and
	// appends the outbox event in the same transaction. The update is
	// conditional on the row still holding from, so a transition committed
	// between the caller's read and this write cannot be overwritten; a
	// stale from yields ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, eventType string, payload []byte, headers map[string]string, traceparent string) (domain.Reservation, error)
}

// ProductCatalog is the read-only collaborator for existence checks and
// display joins.
type ProductCatalog interface {
	Summary(ctx context.Context, productID string) (catalogdomain.Summary, error)
}

// AdminNotifier delivers the advisory reservation-created webhook. It must
// never block the caller and never surface an error: the store is the source
// of truth, the admin panel is not.
type AdminNotifier interface {
	ReservationCreated(res PopulatedReservation, requester auth.Identity)
}
