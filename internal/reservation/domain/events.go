package domain

import "time"

const (
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
)

type ReservationCreated struct {
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	ProductID     string    `json:"product_id"`
	PickupDate    time.Time `json:"pickup_date"`
	ReturnDate    time.Time `json:"return_date"`
	Status        Status    `json:"status"`
}

type ReservationStatusChanged struct {
	ReservationID string `json:"reservation_id"`
	From          Status `json:"from"`
	To            Status `json:"to"`
}
