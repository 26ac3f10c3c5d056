// internal/adapters/in/http/handler/helper_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pharmacy/internal/adapters/in/http/middleware"
	usecase "pharmacy/internal/application/usecase"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr returns the structured message payload every handler uses.
// No stack traces or internal identifiers reach the caller.
func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requireAdmin enforces the admin role on an already-authenticated request.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !middleware.IsAdmin(r.Context()) {
		writeErr(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// mapUsecaseErr translates usecase sentinels to HTTP statuses. Anything
// unrecognized is a server-side failure: logged in full, surfaced generically.
func mapUsecaseErr(w http.ResponseWriter, tag string, err error) {
	switch {
	case errors.Is(err, usecase.ErrBadDrugID):
		writeErr(w, http.StatusBadRequest, "bad drug id")
	case errors.Is(err, usecase.ErrCartInvalidArgument),
		errors.Is(err, usecase.ErrDrugInvalidArgument),
		errors.Is(err, usecase.ErrUserInvalidArgument):
		writeErr(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, usecase.ErrNoMorePages):
		writeErr(w, http.StatusBadRequest, "no more pages")
	case errors.Is(err, usecase.ErrCartNotFound):
		writeErr(w, http.StatusNotFound, "user doesn't have a cart to purchase")
	case errors.Is(err, usecase.ErrCartItemNotFound):
		writeErr(w, http.StatusNotFound, "item not in cart")
	case errors.Is(err, usecase.ErrCartDrugNotFound), errors.Is(err, usecase.ErrDrugNotFound):
		writeErr(w, http.StatusNotFound, "drug doesn't exist")
	case errors.Is(err, usecase.ErrUserNotFound):
		writeErr(w, http.StatusNotFound, "user doesn't exist")
	case errors.Is(err, usecase.ErrDrugExists):
		writeErr(w, http.StatusNotAcceptable, "drug already exists")
	default:
		log.Printf("[%s] ERROR: %v", tag, err)
		writeErr(w, http.StatusInternalServerError, "something went wrong server side")
	}
}
