package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/domain"
	"github.com/CodeKhoVL/DoAn-Store/pkg/auth"
	"github.com/CodeKhoVL/DoAn-Store/pkg/tracing"
)

type Service struct {
	repo     Repository
	catalog  ProductCatalog
	notifier AdminNotifier
	source   string
}

func NewService(repo Repository, catalog ProductCatalog, notifier AdminNotifier, source string) *Service {
	return &Service{repo: repo, catalog: catalog, notifier: notifier, source: source}
}

type CreateInput struct {
	ProductID  string
	PickupDate time.Time
	ReturnDate time.Time
	Note       string
}

// Create runs the reservation admission flow: validate, check the product
// exists, check the date range is free, persist pending, then fire the
// advisory admin notification. The repository re-checks the overlap under a
// product-row lock, so two concurrent requests for intersecting ranges cannot
// both commit.
func (s *Service) Create(ctx context.Context, requester auth.Identity, in CreateInput) (PopulatedReservation, error) {
	res, err := domain.NewReservation(requester.UserID, in.ProductID, in.PickupDate, in.ReturnDate, in.Note)
	if err != nil {
		return PopulatedReservation{}, err
	}

	product, err := s.catalog.Summary(ctx, res.ProductID)
	if err != nil {
		return PopulatedReservation{}, err
	}

	overlapping, err := s.repo.FindOverlapping(ctx, res.ProductID, res.PickupDate, res.ReturnDate, domain.ActiveStatuses)
	if err != nil {
		return PopulatedReservation{}, err
	}
	if len(overlapping) > 0 {
		return PopulatedReservation{}, domain.ErrDateConflict
	}

	payload, err := json.Marshal(domain.ReservationCreated{
		ReservationID: res.ID,
		UserID:        res.UserID,
		ProductID:     res.ProductID,
		PickupDate:    res.PickupDate,
		ReturnDate:    res.ReturnDate,
		Status:        res.Status,
	})
	if err != nil {
		return PopulatedReservation{}, err
	}

	headers := map[string]string{"source": s.source}
	if err := s.repo.Create(ctx, res, domain.EventReservationCreated, payload, headers, tracing.Traceparent(ctx)); err != nil {
		return PopulatedReservation{}, err
	}

	populated := PopulatedReservation{Reservation: res, Product: product}
	s.notifier.ReservationCreated(populated, requester)
	return populated, nil
}

// ListForUser returns the caller's reservations newest-first with product
// display data, silently dropping reservations whose product was deleted.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]PopulatedReservation, error) {
	return s.repo.FindByUser(ctx, userID)
}

// GetForUser returns one of the caller's reservations. Someone else's
// reservation id resolves to not-found rather than forbidden.
func (s *Service) GetForUser(ctx context.Context, userID, id string) (PopulatedReservation, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PopulatedReservation{}, err
	}
	if res.UserID != userID {
		return PopulatedReservation{}, domain.ErrNotFound
	}
	product, err := s.catalog.Summary(ctx, res.ProductID)
	if err != nil {
		return PopulatedReservation{}, err
	}
	return PopulatedReservation{Reservation: res, Product: product}, nil
}

// CheckAvailability reports whether the product can be reserved for the
// inclusive [pickup, return] range.
func (s *Service) CheckAvailability(ctx context.Context, productID string, pickup, ret time.Time) (bool, error) {
	if productID == "" || pickup.IsZero() || ret.IsZero() {
		return false, fmt.Errorf("%w: missing product id or dates", domain.ErrValidation)
	}
	pickup, ret = domain.DateOnly(pickup), domain.DateOnly(ret)
	if pickup.After(ret) {
		return false, fmt.Errorf("%w: pickup date is after return date", domain.ErrValidation)
	}
	if _, err := s.catalog.Summary(ctx, productID); err != nil {
		return false, err
	}
	overlapping, err := s.repo.FindOverlapping(ctx, productID, pickup, ret, domain.ActiveStatuses)
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// UpdateStatus moves a reservation along the lifecycle. Any request outside
// the pending->approved|rejected, approved->completed|rejected edges fails.
// The repository write is conditional on the status read here, so a
// transition committed by a concurrent request fails this one instead of
// being overwritten.
func (s *Service) UpdateStatus(ctx context.Context, id, requested string) (domain.Reservation, error) {
	status, ok := domain.ParseStatus(requested)
	if !ok {
		return domain.Reservation{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, requested)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if !domain.CanTransition(current.Status, status) {
		return domain.Reservation{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
	}

	payload, err := json.Marshal(domain.ReservationStatusChanged{
		ReservationID: id,
		From:          current.Status,
		To:            status,
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	headers := map[string]string{"source": s.source}
	return s.repo.UpdateStatus(ctx, id, current.Status, status, domain.EventReservationStatusChanged, payload, headers, tracing.Traceparent(ctx))
}
