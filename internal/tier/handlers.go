package tier

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/fulfillment-fees/internal/common"
)

// Handler exposes the tier registry.
type Handler struct{}

// List handles GET /api/v1/tiers.
func (Handler) List(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": All()})
}

// Fee handles GET /api/v1/tiers/{name}/fee?netProfit=.
func (Handler) Fee(w http.ResponseWriter, r *http.Request) {
	name, err := ParseName(chi.URLParam(r, "name"))
	if err != nil {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "pricing tier not found", nil)
		return
	}
	profit, err := common.OptionalDecimal(r.URL.Query().Get("netProfit"))
	if err != nil {
		common.WriteError(w, common.ValidationError(common.DecimalFieldError("netProfit", err)))
		return
	}
	if profit == nil {
		common.WriteError(w, common.ValidationError(common.FieldError{Field: "netProfit", Message: "is required"}))
		return
	}
	t, err := Lookup(name)
	if err != nil {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "pricing tier not found", nil)
		return
	}
	fee, err := ComputeFee(*profit, t)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeConfig, "pricing tier misconfigured", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"tier":         t.Name,
		"netProfit":    *profit,
		"rate":         fee.Rate,
		"amount":       fee.Amount,
		"fixedPayment": t.FixedPayment,
	}})
}
