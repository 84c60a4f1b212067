package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	ticketDomain "backed-protocol/internal/domain/ticket"
	"backed-protocol/internal/usecase/ticket"
)

type TicketHandler struct{ uc *ticket.Usecase }

func NewTicketHandler(uc *ticket.Usecase) *TicketHandler { return &TicketHandler{uc: uc} }

func sideParam(c echo.Context) (ticketDomain.Side, bool) {
	side := ticketDomain.Side(c.Param("side"))
	return side, side.Valid()
}

func (h *TicketHandler) GetOwner(c echo.Context) error {
	side, ok := sideParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "side must be borrow or lend"})
	}
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	dto, err := h.uc.Owner(c.Request().Context(), loanID, side)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type transferReq struct {
	To string `json:"to" validate:"required,hex32"`
}

func (h *TicketHandler) Transfer(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	side, ok := sideParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "side must be borrow or lend"})
	}
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Transfer(c.Request().Context(), loanID, side, caller, req.To)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TicketHandler) ListByOwner(c echo.Context) error {
	owner := c.QueryParam("owner")
	if !reHex32.MatchString(owner) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "owner query param must be 32-char lowercase hex"})
	}
	dtos, err := h.uc.ListByOwner(c.Request().Context(), owner)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}
