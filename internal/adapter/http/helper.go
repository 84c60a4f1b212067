package http

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"backed-protocol/internal/domain/custody"
	drawerDomain "backed-protocol/internal/domain/drawer"
	loanDomain "backed-protocol/internal/domain/loan"
	"backed-protocol/internal/domain/protocol"
	ticketDomain "backed-protocol/internal/domain/ticket"
)

// ActorHeader carries the caller identity. Transport auth happens upstream;
// by the time a request reaches the ledger this header is trusted.
const ActorHeader = "Ax-Actor-Id"

func callerID(c echo.Context) (string, bool) {
	id := strings.TrimSpace(c.Request().Header.Get(ActorHeader))
	return id, reHex32.MatchString(id)
}

func loanIDParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	return id, err == nil && id > 0
}

func parseAmount(s string) (*big.Int, bool) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}

// statusForError maps domain sentinels to HTTP codes: missing things are 404,
// permission failures 403, state conflicts 409, rejected business rules 422,
// malformed input 400 and custody refusals 502.
func statusForError(err error) int {
	switch {
	case errors.Is(err, loanDomain.ErrNotFound),
		errors.Is(err, ticketDomain.ErrNotMinted):
		return http.StatusNotFound
	case errors.Is(err, loanDomain.ErrNotBorrower),
		errors.Is(err, loanDomain.ErrNotLender),
		errors.Is(err, ticketDomain.ErrNotOwner),
		errors.Is(err, protocol.ErrNotAdministrator):
		return http.StatusForbidden
	case errors.Is(err, loanDomain.ErrClosed),
		errors.Is(err, loanDomain.ErrHasLender),
		errors.Is(err, ticketDomain.ErrAlreadyMinted):
		return http.StatusConflict
	case errors.Is(err, loanDomain.ErrInvalidInput),
		errors.Is(err, ticketDomain.ErrInvalidSide),
		errors.Is(err, ticketDomain.ErrInvalidRecipient),
		errors.Is(err, drawerDomain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, loanDomain.ErrTermsRejected),
		errors.Is(err, loanDomain.ErrInsufficientImprovement),
		errors.Is(err, loanDomain.ErrPaymentNotLate),
		errors.Is(err, loanDomain.ErrForbiddenCollateral),
		errors.Is(err, loanDomain.ErrInsufficientDrawable),
		errors.Is(err, drawerDomain.ErrInsufficientFunds),
		errors.Is(err, protocol.ErrFeeTooHigh),
		errors.Is(err, protocol.ErrInvalidRate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, custody.ErrTransferRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func domainError(c echo.Context, err error) error {
	return c.JSON(statusForError(err), ErrorResponse{Error: err.Error()})
}

func missingActor(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid " + ActorHeader + " header"})
}

func badLoanID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
}
