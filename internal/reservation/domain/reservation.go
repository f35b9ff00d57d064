package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// ActiveStatuses are the statuses that block other reservations on the same
// product. Rejected and completed reservations never conflict.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusApproved: true, StatusRejected: true},
	StatusApproved:  {StatusCompleted: true, StatusRejected: true},
	StatusRejected:  {},
	StatusCompleted: {},
}

// CanTransition reports whether a status change is legal. Rejected and
// completed are terminal.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Reservation is a user's claim on a product for an inclusive date range.
type Reservation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	ProductID       string    `json:"productId"`
	Status          Status    `json:"status"`
	ReservationDate time.Time `json:"reservationDate"`
	PickupDate      time.Time `json:"pickupDate"`
	ReturnDate      time.Time `json:"returnDate"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewReservation builds a pending reservation for the given claim. Dates are
// normalized to UTC midnight; the interval is inclusive on both ends, so
// pickup == return is a valid single-day reservation.
func NewReservation(userID, productID string, pickup, ret time.Time, note string) (Reservation, error) {
	if userID == "" {
		return Reservation{}, validationError("missing user id")
	}
	if productID == "" {
		return Reservation{}, validationError("missing product id")
	}
	if pickup.IsZero() || ret.IsZero() {
		return Reservation{}, validationError("missing pickup or return date")
	}
	pickup, ret = DateOnly(pickup), DateOnly(ret)
	if pickup.After(ret) {
		return Reservation{}, validationError("pickup date is after return date")
	}

	now := time.Now().UTC()
	return Reservation{
		ID:              uuid.NewString(),
		UserID:          userID,
		ProductID:       productID,
		Status:          StatusPending,
		ReservationDate: now,
		PickupDate:      pickup,
		ReturnDate:      ret,
		Note:            note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Overlaps reports whether the reservation's interval intersects [pickup,
// return] under the inclusive-boundary rule: a shared boundary day counts.
func (r Reservation) Overlaps(pickup, ret time.Time) bool {
	return !r.PickupDate.After(DateOnly(ret)) && !DateOnly(pickup).After(r.ReturnDate)
}

// DateOnly truncates a timestamp to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
