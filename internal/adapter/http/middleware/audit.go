package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxAuditResourceID lets a handler name the audited resource when it is
// not a path parameter.
const CtxAuditResourceID = "audit_resource_id"

// AuditLog creates an audit middleware that logs successful write operations.
// It maps routes to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method != http.MethodPost {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath())
		if action == "" {
			return
		}

		resourceID := c.Param("id")
		if id := c.GetString(CtxAuditResourceID); id != "" {
			resourceID = id
		}

		var userID *string
		if uid := c.GetString(CtxUserID); uid != "" {
			userID = &uid
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func mapRouteToAction(route string) (domain.AuditAction, string) {
	switch route {
	case "/api/v1/events/:id/snapshots":
		return domain.AuditActionSnapshotRecorded, "snapshot"
	case "/api/v1/webhooks/backend":
		return domain.AuditActionBackendWebhook, "event"
	case "/api/v1/balances/compute":
		return domain.AuditActionAdhocCompute, "event"
	}
	return "", ""
}
