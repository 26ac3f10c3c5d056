// internal/adapters/in/http/handler/cart_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"pharmacy/internal/adapters/in/http/middleware"
	usecase "pharmacy/internal/application/usecase"
)

// CartHandler serves the cart endpoints under /api/cart.
//
//	GET    /api/cart                  fetch-or-create the open cart
//	GET    /api/cart/history          purchased carts
//	GET    /api/cart/all              every cart (admin, testing only)
//	POST   /api/cart/items            add item {drugId, quantity}
//	DELETE /api/cart/items/{drugId}   remove item
//	POST   /api/cart/purchase         finalize the open cart
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	uid, ok := middleware.UIDFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rest := strings.TrimRight(strings.TrimPrefix(r.URL.Path, "/api/cart"), "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleGetOrCreate(w, r, uid)
	case rest == "/history" && r.Method == http.MethodGet:
		h.handleHistory(w, r, uid)
	case rest == "/all" && r.Method == http.MethodGet:
		h.handleListAll(w, r)
	case rest == "/items" && r.Method == http.MethodPost:
		h.handleAddItem(w, r, uid)
	case strings.HasPrefix(rest, "/items/") && r.Method == http.MethodDelete:
		h.handleRemoveItem(w, r, uid, strings.TrimPrefix(rest, "/items/"))
	case rest == "/purchase" && r.Method == http.MethodPost:
		h.handlePurchase(w, r, uid)
	case rest == "" || rest == "/history" || rest == "/all" || rest == "/items" || rest == "/purchase":
		methodNotAllowed(w)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}

	log.Printf("[cart_handler] %s %s uid=%s elapsed=%s", r.Method, r.URL.Path, uid, time.Since(start))
}

func (h *CartHandler) handleGetOrCreate(w http.ResponseWriter, r *http.Request, uid string) {
	c, err := h.uc.GetOrCreate(r.Context(), uid)
	if err != nil {
		mapUsecaseErr(w, "cart_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) handleHistory(w http.ResponseWriter, r *http.Request, uid string) {
	carts, err := h.uc.History(r.Context(), uid)
	if err != nil {
		mapUsecaseErr(w, "cart_handler", err)
		return
	}
	if len(carts) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "the user didn't make any purchase"})
		return
	}
	writeJSON(w, http.StatusOK, carts)
}

// handleListAll is a testing-only capability; admin role required.
func (h *CartHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	carts, err := h.uc.ListAll(r.Context())
	if err != nil {
		mapUsecaseErr(w, "cart_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, carts)
}

type addItemRequest struct {
	DrugID   string `json:"drugId"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request, uid string) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.uc.AddItem(r.Context(), uid, req.DrugID, req.Quantity)
	if err != nil {
		mapUsecaseErr(w, "cart_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request, uid, drugID string) {
	if err := h.uc.RemoveItem(r.Context(), uid, drugID); err != nil {
		mapUsecaseErr(w, "cart_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

func (h *CartHandler) handlePurchase(w http.ResponseWriter, r *http.Request, uid string) {
	username := middleware.UsernameFromContext(r.Context())
	email := middleware.EmailFromContext(r.Context())

	c, err := h.uc.Purchase(r.Context(), uid, username, email)
	if err != nil {
		mapUsecaseErr(w, "cart_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
