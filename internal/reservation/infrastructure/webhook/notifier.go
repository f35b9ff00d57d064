package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/application"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/domain"
	"github.com/CodeKhoVL/DoAn-Store/pkg/auth"
	"github.com/CodeKhoVL/DoAn-Store/pkg/idempotency"
)

// ClaimStore is the one-shot delivery guard, satisfied by idempotency.Store.
type ClaimStore interface {
	Key(kind, id string) string
	Claim(ctx context.Context, key string) (bool, error)
}

var _ ClaimStore = (*idempotency.Store)(nil)

// Notifier posts reservation events to the admin panel's webhook endpoint.
// Delivery is advisory: one attempt, detached from the request that caused
// it, failures only logged. The idempotency claim keeps it at-most-once per
// reservation even across process restarts.
type Notifier struct {
	log     *slog.Logger
	client  *http.Client
	idem    ClaimStore
	baseURL string
}

func NewNotifier(log *slog.Logger, idem ClaimStore, adminURL string) *Notifier {
	return &Notifier{
		log:     log,
		client:  &http.Client{Timeout: 5 * time.Second},
		idem:    idem,
		baseURL: strings.TrimRight(adminURL, "/"),
	}
}

type payload struct {
	Type string      `json:"type"`
	Data payloadData `json:"data"`
}

type payloadData struct {
	Reservation application.PopulatedReservation `json:"reservation"`
	UserName    string                           `json:"userName"`
	UserEmail   string                           `json:"userEmail"`
}

func (n *Notifier) ReservationCreated(res application.PopulatedReservation, requester auth.Identity) {
	go n.deliver(res, requester)
}

func (n *Notifier) deliver(res application.PopulatedReservation, requester auth.Identity) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := n.idem.Key("webhook", res.ID)
	claimed, err := n.idem.Claim(ctx, key)
	if err != nil {
		n.log.Error("webhook idempotency claim failed", "reservation_id", res.ID, "err", err)
		return
	}
	if !claimed {
		n.log.Info("webhook already attempted, skipping", "reservation_id", res.ID)
		return
	}

	body, err := json.Marshal(payload{
		Type: domain.EventReservationCreated,
		Data: payloadData{
			Reservation: res,
			UserName:    requester.Name,
			UserEmail:   requester.Email,
		},
	})
	if err != nil {
		n.log.Error("webhook payload marshal failed", "reservation_id", res.ID, "err", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/api/webhooks", bytes.NewReader(body))
	if err != nil {
		n.log.Error("webhook request build failed", "reservation_id", res.ID, "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("failed to notify admin panel", "reservation_id", res.ID, "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.Error("admin panel rejected webhook",
			"reservation_id", res.ID, "status", fmt.Sprintf("%d", resp.StatusCode))
		return
	}
	n.log.Info("admin panel notified", "reservation_id", res.ID)
}
