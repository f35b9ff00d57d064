package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	catalogdomain "github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/application"
	"github.com/CodeKhoVL/DoAn-Store/internal/reservation/domain"
	"github.com/CodeKhoVL/DoAn-Store/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	reservations map[string]domain.Reservation
}

func (f *fakeRepo) Create(_ context.Context, r domain.Reservation, _ string, _ []byte, _ map[string]string, _ string) error {
	for _, existing := range f.reservations {
		if existing.ProductID == r.ProductID && existing.Overlaps(r.PickupDate, r.ReturnDate) {
			return domain.ErrDateConflict
		}
	}
	f.reservations[r.ID] = r
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (domain.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) FindByUser(_ context.Context, userID string) ([]application.PopulatedReservation, error) {
	out := []application.PopulatedReservation{}
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, application.PopulatedReservation{Reservation: r})
		}
	}
	return out, nil
}

func (f *fakeRepo) FindOverlapping(_ context.Context, productID string, pickup, ret time.Time, _ []domain.Status) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.ProductID == productID && r.Overlaps(pickup, ret) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, from, to domain.Status, _ string, _ []byte, _ map[string]string, _ string) (domain.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	if r.Status != from {
		return domain.Reservation{}, domain.ErrInvalidTransition
	}
	r.Status = to
	f.reservations[id] = r
	return r, nil
}

type fakeCatalog struct{}

func (fakeCatalog) Summary(_ context.Context, id string) (catalogdomain.Summary, error) {
	if id != "prod-1" {
		return catalogdomain.Summary{}, catalogdomain.ErrProductNotFound
	}
	return catalogdomain.Summary{ID: "prod-1", Title: "Nhà Giả Kim", Category: "fiction", PriceCents: 6900}, nil
}

type noopNotifier struct{}

func (noopNotifier) ReservationCreated(application.PopulatedReservation, auth.Identity) {}

func newTestServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{reservations: map[string]domain.Reservation{}}
	svc := application.NewService(repo, fakeCatalog{}, noopNotifier{}, "storefront-api")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewHandler(log, svc).Routes())
	t.Cleanup(srv.Close)
	return srv, repo
}

func doJSON(t *testing.T, method, url, body string, authed bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set(auth.HeaderUserID, "user-1")
		req.Header.Set(auth.HeaderName, "An Nguyen")
		req.Header.Set(auth.HeaderEmail, "an@example.com")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCreateRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1","pickupDate":"2024-06-01","returnDate":"2024-06-10"}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateMissingFields(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateInvalidDate(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1","pickupDate":"June 1st","returnDate":"2024-06-10"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateSucceeds(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1","pickupDate":"2024-06-01","returnDate":"2024-06-10","note":"sau giờ làm"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"pending"`)
	assert.Contains(t, string(body), `"Nhà Giả Kim"`)
}

func TestCreateUnknownProduct(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-9","pickupDate":"2024-06-01","returnDate":"2024-06-10"}`, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1","pickupDate":"2024-06-01","returnDate":"2024-06-10"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1","pickupDate":"2024-06-10","returnDate":"2024-06-15"}`, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "already reserved")
}

func TestListReservations(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1","pickupDate":"2024-06-01","returnDate":"2024-06-10"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"productId":"prod-1"`)
}

func TestUpdateStatus(t *testing.T) {
	srv, repo := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1","pickupDate":"2024-06-01","returnDate":"2024-06-10"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var id string
	for k := range repo.reservations {
		id = k
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/"+id, `{}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/"+id, `{"status":"approved"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/"+id, `{"status":"pending"}`, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/nope", `{"status":"approved"}`, true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAvailability(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/availability?product_id=prod-1&pickup_date=2024-06-01&return_date=2024-06-10", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"available":true`)

	resp = doJSON(t, http.MethodPost, srv.URL+"/", `{"productId":"prod-1","pickupDate":"2024-06-01","returnDate":"2024-06-10"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/availability?product_id=prod-1&pickup_date=2024-06-05&return_date=2024-06-06", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"available":false`)
}
