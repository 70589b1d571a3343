package handler

import (
	"ledgersplit/internal/adapter/http/dto"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/apperror"
	"ledgersplit/pkg/response"

	"github.com/gin-gonic/gin"
)

// SnapshotHandler handles balance history endpoints.
type SnapshotHandler struct {
	snapshotSvc ports.SnapshotService
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(snapshotSvc ports.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshotSvc: snapshotSvc}
}

// Record handles POST /api/v1/events/:id/snapshots.
func (h *SnapshotHandler) Record(c *gin.Context) {
	caller, eventID, ok := bindEventRequest(c)
	if !ok {
		return
	}

	snapshot, err := h.snapshotSvc.Record(c.Request.Context(), caller, eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toSnapshotResponse(snapshot))
}

// List handles GET /api/v1/events/:id/snapshots.
func (h *SnapshotHandler) List(c *gin.Context) {
	caller, eventID, ok := bindEventRequest(c)
	if !ok {
		return
	}

	var q dto.SnapshotListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation("invalid limit"))
		return
	}

	snapshots, err := h.snapshotSvc.List(c.Request.Context(), caller, eventID, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.SnapshotResponse, 0, len(snapshots))
	for i := range snapshots {
		items = append(items, toSnapshotResponse(&snapshots[i]))
	}
	response.OK(c, dto.SnapshotListResponse{Items: items, Total: len(items)})
}
