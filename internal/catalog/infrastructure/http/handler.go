package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/CodeKhoVL/DoAn-Store/internal/catalog/application"
	"github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const requestTimeout = 3 * time.Second

// Handler serves the public, read-only catalog routes the storefront pages
// consume. No auth: browsing is anonymous.
type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("catalog-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/products", h.list)
	r.Get("/products/{productID}", h.get)
	r.Get("/products/{productID}/related", h.related)
	r.Get("/search/{query}", h.search)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	products, err := h.service.List(ctx)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProduct")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	p, err := h.service.Get(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) related(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RelatedProducts")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	products, err := h.service.Related(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SearchProducts")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	products, err := h.service.Search(ctx, chi.URLParam(r, "query"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	h.log.Error("catalog request failed", "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
