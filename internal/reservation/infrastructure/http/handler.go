package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/application"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/domain"
	"github.com/CodeKhoVL/DoAn-Store/pkg/auth"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const requestTimeout = 5 * time.Second

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("reservation-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Require)
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/availability", h.availability)
	r.Get("/{reservationID}", h.get)
	r.Patch("/{reservationID}", h.updateStatus)
	return r
}

type createReservationReq struct {
	ProductID  string `json:"productId"`
	PickupDate string `json:"pickupDate"`
	ReturnDate string `json:"returnDate"`
	Note       string `json:"note"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateReservation")
	defer span.End()
	ctx, cancel := timeoutCtx(ctx)
	defer cancel()

	ident, _ := auth.FromContext(ctx)

	var req createReservationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ProductID == "" || req.PickupDate == "" || req.ReturnDate == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	pickup, err := parseDate(req.PickupDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pickup date")
		return
	}
	ret, err := parseDate(req.ReturnDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid return date")
		return
	}

	res, err := h.service.Create(ctx, ident, application.CreateInput{
		ProductID:  req.ProductID,
		PickupDate: pickup,
		ReturnDate: ret,
		Note:       req.Note,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListReservations")
	defer span.End()
	ctx, cancel := timeoutCtx(ctx)
	defer cancel()

	ident, _ := auth.FromContext(ctx)

	out, err := h.service.ListForUser(ctx, ident.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetReservation")
	defer span.End()
	ctx, cancel := timeoutCtx(ctx)
	defer cancel()

	ident, _ := auth.FromContext(ctx)

	res, err := h.service.GetForUser(ctx, ident.UserID, chi.URLParam(r, "reservationID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CheckAvailability")
	defer span.End()
	ctx, cancel := timeoutCtx(ctx)
	defer cancel()

	q := r.URL.Query()
	pickup, err := parseDate(q.Get("pickup_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pickup date")
		return
	}
	ret, err := parseDate(q.Get("return_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid return date")
		return
	}

	available, err := h.service.CheckAvailability(ctx, q.Get("product_id"), pickup, ret)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateReservationStatus")
	defer span.End()
	ctx, cancel := timeoutCtx(ctx)
	defer cancel()

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	res, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "reservationID"), req.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalogdomain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, domain.ErrDateConflict):
		writeError(w, http.StatusConflict, domain.ErrDateConflict.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("reservation request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// timeoutCtx bounds every store and notifier call so a slow dependency cannot
// hang the request.
func timeoutCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, requestTimeout)
}

// parseDate accepts plain dates and RFC3339 timestamps; either way only the
// calendar day is significant.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
