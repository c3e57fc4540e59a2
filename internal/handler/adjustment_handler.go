package handler

import (
	"net/http"
	"strconv"

	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdjustmentHandler struct {
	uc *usecase.StockAdjustmentUsecase
}

func NewAdjustmentHandler(uc *usecase.StockAdjustmentUsecase) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc}
}

type createAdjustmentRequest struct {
	ProductID       int64  `json:"product_id"`
	Type            string `json:"type"`
	QuantityChange  int64  `json:"quantity_change"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
	ReferenceNumber string `json:"reference_number"`
}

func (h *AdjustmentHandler) Create(c echo.Context) error {
	var req createAdjustmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), actorFrom(c), usecase.CreateAdjustmentInput{
		ProductID:       req.ProductID,
		Type:            req.Type,
		QuantityChange:  req.QuantityChange,
		Reason:          req.Reason,
		Notes:           req.Notes,
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// 承認待ちの調整を店長が承認する
func (h *AdjustmentHandler) Approve(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Approve(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdjustmentHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}
	if limit < 1 || limit > 100 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	if offset < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	var productID *int64
	if v := c.QueryParam("product_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
		}
		productID = &x
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AdjustmentListInput{
		ProductID:   productID,
		PendingOnly: c.QueryParam("pending") == "true",
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"items": out})
}
