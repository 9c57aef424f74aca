package pricing

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/noah-isme/fulfillment-fees/internal/common"
)

// Calculation is the behaviour the HTTP layer needs from Service.
type Calculation interface {
	Breakdown(ctx context.Context, in BreakdownInput) (Breakdown, error)
}

// Handler exposes the profit breakdown endpoint.
type Handler struct {
	Svc Calculation
}

// Breakdown handles POST /api/v1/breakdown.
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "pricing service not configured", nil)
		return
	}
	var in BreakdownInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}
	out, err := h.Svc.Breakdown(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
