package handler

import (
	"net/http"

	"pos/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReturnHandler struct {
	uc *usecase.ReturnUsecase
}

func NewReturnHandler(uc *usecase.ReturnUsecase) *ReturnHandler {
	return &ReturnHandler{uc: uc}
}

type returnItemRequest struct {
	OriginalSaleItemID int64  `json:"original_sale_item_id"`
	Quantity           int64  `json:"quantity"`
	LineTotalCents     int64  `json:"line_total_cents"`
	Condition          string `json:"condition"`
	Reason             string `json:"reason"`
}

type processReturnRequest struct {
	OriginalSaleID int64               `json:"original_sale_id"`
	Items          []returnItemRequest `json:"items"`

	//承認が必要なケースで店長が入力するPIN
	ManagerPIN string `json:"manager_pin"`
}

func (h *ReturnHandler) Process(c echo.Context) error {
	var req processReturnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.ReturnItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.ReturnItemInput{
			OriginalSaleItemID: it.OriginalSaleItemID,
			Quantity:           it.Quantity,
			LineTotalCents:     it.LineTotalCents,
			Condition:          it.Condition,
			Reason:             it.Reason,
		})
	}

	out, err := h.uc.ProcessReturn(c.Request().Context(), actorFrom(c), usecase.ProcessReturnInput{
		OriginalSaleID: req.OriginalSaleID,
		Items:          items,
		ManagerPIN:     req.ManagerPIN,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ReturnHandler) Detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetReturn(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ReturnHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.uc.ListReturns(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
