package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"backed-protocol/internal/usecase/drawer"
)

type DrawerHandler struct{ uc *drawer.Usecase }

func NewDrawerHandler(uc *drawer.Usecase) *DrawerHandler { return &DrawerHandler{uc: uc} }

func (h *DrawerHandler) GetBalance(c echo.Context) error {
	asset := c.Param("asset")
	if asset == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing asset path param"})
	}
	dto, err := h.uc.Balance(c.Request().Context(), asset)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type withdrawReq struct {
	Amount    string `json:"amount"    validate:"required,numstr"`
	Recipient string `json:"recipient" validate:"omitempty,hex32"`
}

func (h *DrawerHandler) Withdraw(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	asset := c.Param("asset")
	if asset == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing asset path param"})
	}
	var req withdrawReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	amount, _ := parseAmount(req.Amount)
	dto, err := h.uc.Withdraw(c.Request().Context(), caller, asset, amount, req.Recipient)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
