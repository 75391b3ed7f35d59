package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PratikDhanave/delivery-time-analytics/internal/auth"
	"github.com/PratikDhanave/delivery-time-analytics/internal/logging"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
	"github.com/PratikDhanave/delivery-time-analytics/internal/store"
)

const headerIdempotencyKey = "Idempotency-Key"

// RegisterEventRoutes registers POST /events, which stores one delivery event
// for the caller's tenant. The body is an event-log entry plus an optional
// event_id. A repeated (tenant, event id) is acknowledged with 200 and
// duplicate=true instead of being stored twice.
func RegisterEventRoutes(r gin.IRoutes, st store.EventStore, cache *ResultCache) {
	r.POST("/events", func(c *gin.Context) {
		ctx := c.Request.Context()
		tenantID := auth.TenantID(c)
		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req models.EventIngestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event: " + err.Error()})
			return
		}
		switch {
		case !req.Timestamp.Valid():
			c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp required"})
			return
		case req.Duration < 0:
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be non-negative"})
			return
		}

		eventID := ingestEventID(c, req)
		inserted, err := st.InsertEvent(ctx, tenantID, eventID, req.Event)
		if err != nil {
			logging.FromContext(ctx).Errorw("Failed to store event", "tenant", tenantID, "event_id", eventID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store insert failed"})
			return
		}

		status := http.StatusOK
		if inserted {
			// averages cached before this event are stale now
			cache.Purge()
			status = http.StatusCreated
		}
		c.JSON(status, models.EventIngestResponse{EventID: eventID, Duplicate: !inserted})
	})
}

// ingestEventID picks the deduplication key: the Idempotency-Key header, then
// the payload's event_id. A generated id never matches a retry.
func ingestEventID(c *gin.Context, req models.EventIngestRequest) string {
	if id := c.GetHeader(headerIdempotencyKey); id != "" {
		return id
	}
	if req.EventID != "" {
		return req.EventID
	}
	return uuid.New().String()
}
