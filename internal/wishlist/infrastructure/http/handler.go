package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	"github.com/CodeKhoVL/DoAn-Store/internal/wishlist/application"
	"github.com/CodeKhoVL/DoAn-Store/pkg/auth"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const requestTimeout = 3 * time.Second

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("wishlist-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Require)
	r.Post("/", h.toggle)
	r.Get("/", h.list)
	return r
}

type toggleReq struct {
	ProductID string `json:"productId"`
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToggleWishlist")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	ident, _ := auth.FromContext(ctx)

	var req toggleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	result, err := h.service.Toggle(ctx, ident.UserID, req.ProductID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListWishlist")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	ident, _ := auth.FromContext(ctx)

	items, err := h.service.List(ctx, ident.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalogdomain.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	h.log.Error("wishlist request failed", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
