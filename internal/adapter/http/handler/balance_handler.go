package handler

import (
	"errors"
	"net/http"

	"ledgersplit/internal/adapter/backend"
	"ledgersplit/internal/adapter/http/dto"
	"ledgersplit/internal/adapter/http/middleware"
	"ledgersplit/internal/core/ledger"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/apperror"
	"ledgersplit/pkg/response"

	"github.com/gin-gonic/gin"
)

// BalanceHandler serves per-event balances and settlement plans.
type BalanceHandler struct {
	balanceSvc ports.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceSvc ports.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceSvc: balanceSvc}
}

// ListEvents handles GET /api/v1/events.
func (h *BalanceHandler) ListEvents(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	summaries, err := h.balanceSvc.ListEventSummaries(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.EventSummaryResponse, 0, len(summaries))
	for i := range summaries {
		items = append(items, toSummaryResponse(&summaries[i]))
	}
	response.OK(c, dto.EventListResponse{Items: items, Total: len(items)})
}

// GetBalances handles GET /api/v1/events/:id/balances.
func (h *BalanceHandler) GetBalances(c *gin.Context) {
	caller, eventID, ok := bindEventRequest(c)
	if !ok {
		return
	}

	summary, err := h.balanceSvc.GetEventSummary(c.Request.Context(), caller, eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toSummaryResponse(summary))
}

// GetSettlement handles GET /api/v1/events/:id/settlement.
func (h *BalanceHandler) GetSettlement(c *gin.Context) {
	caller, eventID, ok := bindEventRequest(c)
	if !ok {
		return
	}

	transfers, err := h.balanceSvc.GetSettlementPlan(c.Request.Context(), caller, eventID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.SettlementResponse{
		EventID:   eventID,
		Transfers: toTransfers(transfers, nil),
	})
}

// Compute handles POST /api/v1/balances/compute. The body is an event in
// the backend's wire format.
func (h *BalanceHandler) Compute(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return
		}
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	event, err := backend.ParseEvent(body)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidInput) {
			response.Error(c, apperror.ErrInvalidLedgerInput(err))
			return
		}
		response.Error(c, apperror.Validation("malformed event payload"))
		return
	}

	summary, err := h.balanceSvc.ComputeSummary(c.Request.Context(), event)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toSummaryResponse(summary))
}

// bindEventRequest extracts the caller and a validated :id. It writes the
// error response itself when ok is false.
func bindEventRequest(c *gin.Context) (ports.Caller, string, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return ports.Caller{}, "", false
	}

	var uri dto.EventURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.Validation("invalid event id"))
		return ports.Caller{}, "", false
	}
	return caller, uri.ID, true
}
