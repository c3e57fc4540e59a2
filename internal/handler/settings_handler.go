package handler

import (
	"net/http"

	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SettingsHandler struct {
	uc *usecase.SettingsUsecase
}

func NewSettingsHandler(uc *usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

func (h *SettingsHandler) Get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

type updateSettingsRequest struct {
	StoreName                    string  `json:"store_name"`
	TaxRatePercent               float64 `json:"tax_rate_percent"`
	ReturnsEnabled               bool    `json:"returns_enabled"`
	ReturnTimeLimitDays          int     `json:"return_time_limit_days"`
	RequireReturnApproval        bool    `json:"require_return_approval"`
	ReturnApprovalThresholdCents int64   `json:"return_approval_threshold_cents"`
	RestockReturnedItems         bool    `json:"restock_returned_items"`
}

func (h *SettingsHandler) Update(c echo.Context) error {
	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Update(c.Request().Context(), actorFrom(c), usecase.UpdateSettingsInput{
		StoreName:                    req.StoreName,
		TaxRatePercent:               req.TaxRatePercent,
		ReturnsEnabled:               req.ReturnsEnabled,
		ReturnTimeLimitDays:          req.ReturnTimeLimitDays,
		RequireReturnApproval:        req.RequireReturnApproval,
		ReturnApprovalThresholdCents: req.ReturnApprovalThresholdCents,
		RestockReturnedItems:         req.RestockReturnedItems,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
