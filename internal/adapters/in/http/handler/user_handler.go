// internal/adapters/in/http/handler/user_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"pharmacy/internal/adapters/in/http/middleware"
	usecase "pharmacy/internal/application/usecase"
)

// UserHandler serves the account endpoints under /api/users.
//
//	POST   /api/users               register (open; no bearer token required)
//	GET    /api/users               list accounts (admin)
//	DELETE /api/users/{uid}         delete account (admin)
//	PUT    /api/users/device-token  register the caller's FCM token
type UserHandler struct {
	uc *usecase.UserUsecase
}

func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "user handler is not configured")
		return
	}

	rest := strings.TrimRight(strings.TrimPrefix(r.URL.Path, "/api/users"), "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case rest == "/device-token" && r.Method == http.MethodPut:
		h.handleDeviceToken(w, r)
	case strings.HasPrefix(rest, "/") && r.Method == http.MethodDelete:
		h.handleDelete(w, r, strings.TrimPrefix(rest, "/"))
	case rest == "" || rest == "/device-token":
		methodNotAllowed(w)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DeviceToken string `json:"deviceToken"`
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}

	u, err := h.uc.Create(r.Context(), req.Email, req.Password, req.Username, req.DeviceToken)
	if err != nil {
		mapUsecaseErr(w, "user_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "user created", "user": u})
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	users, err := h.uc.ListAll(r.Context())
	if err != nil {
		mapUsecaseErr(w, "user_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request, uid string) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.uc.Delete(r.Context(), uid); err != nil {
		mapUsecaseErr(w, "user_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

type deviceTokenRequest struct {
	DeviceToken string `json:"deviceToken"`
}

func (h *UserHandler) handleDeviceToken(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UIDFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req deviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}

	u, err := h.uc.RegisterDeviceToken(r.Context(), uid, req.DeviceToken)
	if err != nil {
		mapUsecaseErr(w, "user_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
