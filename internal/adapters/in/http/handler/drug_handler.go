// internal/adapters/in/http/handler/drug_handler.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	usecase "pharmacy/internal/application/usecase"
	drugdom "pharmacy/internal/domain/drug"
)

// maxImageBytes caps form image uploads.
const maxImageBytes = 5 << 20

// DrugHandler serves the catalog endpoints under /api/drugs.
//
//	GET    /api/drugs                 list (query: name, form, active_ingredient, page, limit)
//	POST   /api/drugs                 create (admin)
//	GET    /api/drugs/forms           distinct form types
//	GET    /api/drugs/{drugId}        single drug
//	PUT    /api/drugs/{drugId}        full update (admin)
//	PATCH  /api/drugs/{drugId}        partial update (admin)
//	DELETE /api/drugs/{drugId}        delete (admin)
//	POST   /api/drugs/{drugId}/image  upload form image (admin, query: form)
type DrugHandler struct {
	uc *usecase.DrugUsecase
}

func NewDrugHandler(uc *usecase.DrugUsecase) *DrugHandler {
	return &DrugHandler{uc: uc}
}

func (h *DrugHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "drug handler is not configured")
		return
	}

	rest := strings.TrimRight(strings.TrimPrefix(r.URL.Path, "/api/drugs"), "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case rest == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case rest == "/forms" && r.Method == http.MethodGet:
		h.handleFormTypes(w, r)
	case strings.HasSuffix(rest, "/image") && r.Method == http.MethodPost:
		h.handleAttachImage(w, r, strings.TrimSuffix(strings.TrimPrefix(rest, "/"), "/image"))
	case strings.HasPrefix(rest, "/"):
		h.serveByID(w, r, strings.TrimPrefix(rest, "/"))
	default:
		methodNotAllowed(w)
	}
}

func (h *DrugHandler) serveByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodPatch:
		h.handlePatch(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (h *DrugHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := drugdom.Filter{
		Name:             strings.TrimSpace(q.Get("name")),
		Form:             strings.TrimSpace(q.Get("form")),
		ActiveIngredient: strings.TrimSpace(q.Get("active_ingredient")),
	}
	page := atoiDefault(q.Get("page"), 0)
	limit := atoiDefault(q.Get("limit"), 0)

	result, err := h.uc.List(r.Context(), f, page, limit)
	if err != nil {
		mapUsecaseErr(w, "drug_handler", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": result.Data,
		"paging": map[string]int{
			"total": result.Total,
			"page":  result.Page,
			"pages": result.Pages,
		},
	})
}

func (h *DrugHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.uc.GetByID(r.Context(), id)
	if err != nil {
		mapUsecaseErr(w, "drug_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DrugHandler) handleFormTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.uc.FormTypes(r.Context())
	if err != nil {
		mapUsecaseErr(w, "drug_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": types})
}

type drugRequest struct {
	DrugName          string         `json:"drug_name"`
	Forms             []drugdom.Form `json:"forms"`
	Strength          string         `json:"strength"`
	ActiveIngredients []string       `json:"active_ingredients"`
	Status            string         `json:"status"`
	Price             float64        `json:"price"`
}

func (h *DrugHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req drugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}

	d, err := drugdom.New(req.DrugName, req.Strength, req.Forms, req.ActiveIngredients, req.Status, req.Price)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid drug")
		return
	}

	created, err := h.uc.Create(r.Context(), d)
	if err != nil {
		mapUsecaseErr(w, "drug_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *DrugHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	var req drugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "nothing to update")
		return
	}

	d, err := drugdom.New(req.DrugName, req.Strength, req.Forms, req.ActiveIngredients, req.Status, req.Price)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid drug")
		return
	}

	updated, err := h.uc.Update(r.Context(), id, d)
	if err != nil {
		mapUsecaseErr(w, "drug_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// drugPatchRequest mirrors drugRequest with optional fields; absent fields
// keep the stored value.
type drugPatchRequest struct {
	DrugName          *string         `json:"drug_name"`
	Forms             *[]drugdom.Form `json:"forms"`
	Strength          *string         `json:"strength"`
	ActiveIngredients *[]string       `json:"active_ingredients"`
	Status            *string         `json:"status"`
	Price             *float64        `json:"price"`
}

func (h *DrugHandler) handlePatch(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	var req drugPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "nothing to update")
		return
	}

	patched, err := h.uc.Patch(r.Context(), id, &usecase.DrugPatch{
		DrugName:          req.DrugName,
		Forms:             req.Forms,
		Strength:          req.Strength,
		ActiveIngredients: req.ActiveIngredients,
		Status:            req.Status,
		Price:             req.Price,
	})
	if err != nil {
		mapUsecaseErr(w, "drug_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, patched)
}

func (h *DrugHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	if err := h.uc.Delete(r.Context(), id); err != nil {
		mapUsecaseErr(w, "drug_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "successfully deleted"})
}

// handleAttachImage accepts the raw image bytes as the request body; the
// target form index comes from the "form" query parameter (default 0).
func (h *DrugHandler) handleAttachImage(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	formIndex := atoiDefault(r.URL.Query().Get("form"), 0)

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "could not read image")
		return
	}
	if len(data) == 0 {
		writeErr(w, http.StatusBadRequest, "image is empty")
		return
	}
	if len(data) > maxImageBytes {
		writeErr(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	d, err := h.uc.AttachImage(r.Context(), id, formIndex, data, r.Header.Get("Content-Type"))
	if err != nil {
		mapUsecaseErr(w, "drug_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func atoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
