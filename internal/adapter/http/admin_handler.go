package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"backed-protocol/internal/domain/protocol"
)

// AdminHandler mutates the live protocol settings. Authorization is the
// settings' own admin gate; the handler only carries the caller through.
type AdminHandler struct{ settings *protocol.Settings }

func NewAdminHandler(settings *protocol.Settings) *AdminHandler {
	return &AdminHandler{settings: settings}
}

type feeRateReq struct {
	FeeRate uint64 `json:"fee_rate"`
}

func (h *AdminHandler) SetOriginationFeeRate(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	var req feeRateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := h.settings.SetOriginationFeeRate(caller, req.FeeRate); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]uint64{"fee_rate": h.settings.OriginationFeeRate()})
}

type improvementReq struct {
	Percent uint64 `json:"percent" validate:"required,gte=1,lte=100"`
}

func (h *AdminHandler) SetImprovementPercent(c echo.Context) error {
	caller, ok := callerID(c)
	if !ok {
		return missingActor(c)
	}
	var req improvementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.settings.SetImprovementPercent(caller, req.Percent); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]uint64{"percent": h.settings.ImprovementPercent()})
}
