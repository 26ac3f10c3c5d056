package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pharmacy/internal/adapters/in/http/middleware"
	usecase "pharmacy/internal/application/usecase"
	cartdom "pharmacy/internal/domain/cart"
	drugdom "pharmacy/internal/domain/drug"
	userdom "pharmacy/internal/domain/user"
)

// in-memory cart store backing the handler tests
type memCartRepo struct {
	mu    sync.Mutex
	seq   int
	carts map[string]*cartdom.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]*cartdom.Cart{}}
}

func (r *memCartRepo) GetOpenByUserUID(_ context.Context, uid string) (*cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.UserUID == uid && !c.Purchased {
			cp := *c
			cp.Items = append([]cartdom.Item{}, c.Items...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCartRepo) Create(_ context.Context, c *cartdom.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		r.seq++
		c.ID = fmt.Sprintf("cart-%d", r.seq)
	}
	cp := *c
	r.carts[c.ID] = &cp
	return nil
}

func (r *memCartRepo) Update(_ context.Context, c *cartdom.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[c.ID]; !ok {
		return errors.New("mem: cart not stored")
	}
	cp := *c
	r.carts[c.ID] = &cp
	return nil
}

func (r *memCartRepo) GetHistoryByUserUID(_ context.Context, uid string) ([]cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []cartdom.Cart{}
	for _, c := range r.carts {
		if c.UserUID == uid && c.Purchased {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCartRepo) ListAll(_ context.Context) ([]cartdom.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []cartdom.Cart{}
	for _, c := range r.carts {
		out = append(out, *c)
	}
	return out, nil
}

type memCatalog map[string]*drugdom.Drug

func (m memCatalog) GetByID(_ context.Context, id string) (*drugdom.Drug, error) {
	d, ok := m[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

type noAdmins struct{}

func (noAdmins) FindAdmin(context.Context) (*userdom.User, error) { return nil, nil }

func newCartTestHandler() *CartHandler {
	catalog := memCatalog{
		"d1": {ID: "d1", DrugName: "Panadol", Price: 10, Status: "Available"},
	}
	uc := usecase.NewCartUsecase(newMemCartRepo(), catalog, noAdmins{}, nil, nil)
	uc.SetDispatch(func(fn func()) { fn() })
	return NewCartHandler(uc)
}

func asCustomer(r *http.Request, uid string) *http.Request {
	ctx := middleware.WithIdentity(r.Context(), uid, "alice", "alice@example.com", userdom.RoleCustomer)
	return r.WithContext(ctx)
}

func asAdmin(r *http.Request, uid string) *http.Request {
	ctx := middleware.WithIdentity(r.Context(), uid, "boss", "boss@example.com", userdom.RoleAdmin)
	return r.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCartHandlerUnauthorized(t *testing.T) {
	h := newCartTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartHandlerGetOrCreate(t *testing.T) {
	h := newCartTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/cart", nil), "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "u1", body["user_uid"])
	require.Equal(t, false, body["purchased"])
	require.Equal(t, 0.0, body["subtotal"])
}

func TestCartHandlerAddItem(t *testing.T) {
	h := newCartTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items",
		strings.NewReader(`{"drugId":"d1","quantity":2}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(req, "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, 20.0, body["subtotal"])
}

func TestCartHandlerAddUnknownDrug(t *testing.T) {
	h := newCartTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items",
		strings.NewReader(`{"drugId":"ghost","quantity":1}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(req, "u1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "drug doesn't exist", decodeBody(t, rec)["message"])
}

func TestCartHandlerAddBadDrugID(t *testing.T) {
	h := newCartTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items",
		strings.NewReader(`{"drugId":"a/b","quantity":1}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(req, "u1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandlerRemoveMissingItem(t *testing.T) {
	h := newCartTestHandler()

	// create the open cart first
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/cart", nil), "u1"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodDelete, "/api/cart/items/d1", nil), "u1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "item not in cart", decodeBody(t, rec)["message"])
}

func TestCartHandlerPurchaseWithoutCart(t *testing.T) {
	h := newCartTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodPost, "/api/cart/purchase", nil), "u1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "user doesn't have a cart to purchase", decodeBody(t, rec)["message"])
}

func TestCartHandlerPurchaseFlow(t *testing.T) {
	h := newCartTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items",
		strings.NewReader(`{"drugId":"d1","quantity":1}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(req, "u1"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodPost, "/api/cart/purchase", nil), "u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["purchased"])

	// history now carries the purchased cart
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/cart/history", nil), "u1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var carts []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carts))
	require.Len(t, carts, 1)
}

func TestCartHandlerEmptyHistoryMessage(t *testing.T) {
	h := newCartTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/cart/history", nil), "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "the user didn't make any purchase", decodeBody(t, rec)["message"])
}

func TestCartHandlerListAllRequiresAdmin(t *testing.T) {
	h := newCartTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodGet, "/api/cart/all", nil), "u1"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/api/cart/all", nil), "admin-1"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCartHandlerMethodNotAllowed(t *testing.T) {
	h := newCartTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asCustomer(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), "u1"))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
