package commission

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/fulfillment-fees/internal/catalog"
	"github.com/noah-isme/fulfillment-fees/internal/common"
)

// RateService is the behaviour the HTTP layer needs from Service.
type RateService interface {
	EffectiveRate(ctx context.Context, c Context) (Resolution, error)
}

// Handler exposes the effective commission lookup.
type Handler struct {
	Svc RateService
}

type effectiveResponse struct {
	Rate      decimal.Decimal `json:"rate"`
	Percent   decimal.Decimal `json:"percent"`
	Source    Source          `json:"source"`
	SettingID *uuid.UUID      `json:"settingId,omitempty"`
}

// Effective handles GET /api/v1/commission/effective.
func (h *Handler) Effective(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "commission service not configured", nil)
		return
	}
	c, err := parseContext(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	res, err := h.Svc.EffectiveRate(r.Context(), c)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": effectiveResponse{
		Rate:      res.Rate,
		Percent:   res.Percent(),
		Source:    res.Source,
		SettingID: res.SettingID,
	}})
}

func parseContext(r *http.Request) (Context, error) {
	q := r.URL.Query()
	var (
		c      Context
		fields []common.FieldError
	)
	if raw := strings.TrimSpace(q.Get("partnerId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fields = append(fields, common.FieldError{Field: "partnerId", Message: "must be a valid UUID"})
		} else {
			c.PartnerID = &id
		}
	}
	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		cat, err := catalog.ParseCategory(raw)
		if err != nil {
			fields = append(fields, common.FieldError{Field: "category", Message: "must be one of the supported values"})
		} else {
			c.Category = &cat
		}
	}
	if raw := strings.TrimSpace(q.Get("marketplace")); raw != "" {
		m, err := catalog.ParseMarketplace(raw)
		if err != nil {
			fields = append(fields, common.FieldError{Field: "marketplace", Message: "must be one of the supported values"})
		} else {
			c.Marketplace = &m
		}
	}
	v, err := common.OptionalDecimal(q.Get("orderValue"))
	switch {
	case err != nil:
		fields = append(fields, common.DecimalFieldError("orderValue", err))
	case v != nil && v.IsNegative():
		fields = append(fields, common.FieldError{Field: "orderValue", Message: "must be greater than or equal to 0"})
	default:
		c.OrderValue = v
	}
	if len(fields) > 0 {
		return Context{}, common.ValidationError(fields...)
	}
	return c, nil
}
