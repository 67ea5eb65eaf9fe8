package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pricewise/catalog-admin/internal/service"
	"github.com/pricewise/catalog-admin/pkg/httputil"
	"github.com/pricewise/catalog-admin/pkg/validator"
)

// PrefillHandler handles HTTP requests for form prefill from the upstream
// product API.
type PrefillHandler struct {
	service *service.PrefillService
	logger  *slog.Logger
}

// NewPrefillHandler creates a new prefill HTTP handler.
func NewPrefillHandler(svc *service.PrefillService, logger *slog.Logger) *PrefillHandler {
	return &PrefillHandler{
		service: svc,
		logger:  logger,
	}
}

// PrefillRequest is the JSON request body for a prefill lookup.
type PrefillRequest struct {
	SKU string `json:"sku" validate:"required,max=20,numeric"`
}

// Prefill handles POST /api/v1/variants/prefill
func (h *PrefillHandler) Prefill(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req PrefillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Struct(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Prefill(r.Context(), req.SKU)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
