package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"backed-protocol/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	CollateralAsset  string `json:"collateral_asset"   validate:"required,max=64"`
	CollateralItemID uint64 `json:"collateral_item_id"`
	LoanAsset        string `json:"loan_asset"         validate:"required,max=64"`
	Amount           string `json:"amount"             validate:"required,numstr"`
	RatePerSecond    uint64 `json:"rate_per_second"`
	DurationSeconds  uint64 `json:"duration_seconds"   validate:"required,gte=1"`
	Recipient        string `json:"recipient"          validate:"omitempty,hex32"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	var req createLoanReq
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
	recipient := req.Recipient
	if recipient == "" {
		recipient = caller
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput{
		Caller:           caller,
		CollateralAsset:  req.CollateralAsset,
		CollateralItemID: req.CollateralItemID,
		LoanAsset:        req.LoanAsset,
		Amount:           amount,
		RatePerSecond:    req.RatePerSecond,
		DurationSeconds:  req.DurationSeconds,
		Recipient:        recipient,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	dto, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetInterest(c echo.Context) error {
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	dto, err := h.uc.InterestOwed(c.Request().Context(), loanID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	asset := c.QueryParam("collateral_asset")
	if asset == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing collateral_asset query param"})
	}
	dtos, err := h.uc.ListOpenByCollateral(c.Request().Context(), asset)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

type underwriteReq struct {
	Amount          string `json:"amount"           validate:"required,numstr"`
	RatePerSecond   uint64 `json:"rate_per_second"`
	DurationSeconds uint64 `json:"duration_seconds" validate:"required,gte=1"`
	Recipient       string `json:"recipient"        validate:"omitempty,hex32"`
}

func (h *LoanHandler) Underwrite(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	var req underwriteReq
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
	dto, err := h.uc.Underwrite(c.Request().Context(), loanID, loan.UnderwriteInput{
		Caller:          caller,
		Amount:          amount,
		RatePerSecond:   req.RatePerSecond,
		DurationSeconds: req.DurationSeconds,
		Recipient:       req.Recipient,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type drawReq struct {
	Amount    string `json:"amount"    validate:"required,numstr"`
	Recipient string `json:"recipient" validate:"omitempty,hex32"`
}

func (h *LoanHandler) Draw(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	var req drawReq
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
	dto, err := h.uc.Draw(c.Request().Context(), loanID, loan.DrawInput{
		Caller:    caller,
		Amount:    amount,
		Recipient: req.Recipient,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	dto, err := h.uc.RepayAndClose(c.Request().Context(), loanID, caller)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// recipientReq is the optional body for seize and close; without it the
// collateral goes back to the caller.
type recipientReq struct {
	Recipient string `json:"recipient" validate:"omitempty,hex32"`
}

func bindRecipient(c echo.Context) (string, error) {
	if c.Request().ContentLength == 0 {
		return "", nil
	}
	var req recipientReq
	if err := c.Bind(&req); err != nil {
		return "", err
	}
	if err := c.Validate(&req); err != nil {
		return "", err
	}
	return req.Recipient, nil
}

func (h *LoanHandler) Seize(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	recipient, err := bindRecipient(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.SeizeCollateral(c.Request().Context(), loanID, caller, recipient)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Close(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	loanID, ok := loanIDParam(c)
	if !ok {
		return badLoanID(c)
	}
	recipient, err := bindRecipient(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Close(c.Request().Context(), loanID, caller, recipient)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
