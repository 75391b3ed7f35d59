package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PratikDhanave/delivery-time-analytics/internal/apperr"
	"github.com/PratikDhanave/delivery-time-analytics/internal/auth"
	"github.com/PratikDhanave/delivery-time-analytics/internal/config"
	"github.com/PratikDhanave/delivery-time-analytics/internal/filter"
	"github.com/PratikDhanave/delivery-time-analytics/internal/loader"
	"github.com/PratikDhanave/delivery-time-analytics/internal/logging"
	"github.com/PratikDhanave/delivery-time-analytics/internal/metrics"
	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
	"github.com/PratikDhanave/delivery-time-analytics/internal/pipeline"
	"github.com/PratikDhanave/delivery-time-analytics/internal/store"
)

// parseQueryTime accepts RFC3339 as well as the event-log layout. Times without
// an offset are read as UTC, the clock events are stored in.
func parseQueryTime(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// RegisterMovingAverageRoutes registers the serving-path endpoints.
//
// GET /moving-average?from=...&to=...&window_size=...&filter=...
// - Requires X-API-Key (tenant context)
// - Averages the tenant's stored events with timestamps in [from,to)
//
// POST /moving-average?window_size=...&filter=...
// - Body is an event log; nothing is read from or written to the store
func RegisterMovingAverageRoutes(r gin.IRoutes, st store.EventStore, cache *ResultCache) {
	r.GET("/moving-average", func(c *gin.Context) {
		tenantID := auth.TenantID(c)
		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		fromStr := c.Query("from")
		toStr := c.Query("to")
		if fromStr == "" || toStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from, to are required"})
			return
		}
		from, err := parseQueryTime(fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a timestamp"})
			return
		}
		to, err := parseQueryTime(toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be a timestamp"})
			return
		}
		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be < to"})
			return
		}

		windowMinutes, f, ok := parseComputeParams(c)
		if !ok {
			return
		}

		key := cacheKey(tenantID, from, to, windowMinutes, f.String())
		if resp, hit := cache.get(key); hit {
			c.JSON(http.StatusOK, resp)
			return
		}

		events, err := st.ListEvents(c.Request.Context(), tenantID, from, to)
		if err != nil {
			logging.FromContext(c.Request.Context()).Errorw("List events failed", "tenant", tenantID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store query failed"})
			return
		}
		events, ok = applyFilter(c, f, events)
		if !ok {
			return
		}
		if len(events) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no events in range"})
			return
		}

		resp, ok := respond(c, events, windowMinutes, metrics.SourceStore)
		if ok {
			cache.add(key, resp)
		}
	})

	r.POST("/moving-average", func(c *gin.Context) {
		windowMinutes, f, ok := parseComputeParams(c)
		if !ok {
			return
		}
		events, err := loader.Decode(c.Request.Body)
		if err != nil {
			metrics.RunsTotal.WithLabelValues(metrics.SourceHTTP, metrics.OutcomeError).Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		events, ok = applyFilter(c, f, events)
		if !ok {
			return
		}
		respond(c, events, windowMinutes, metrics.SourceHTTP)
	})
}

// parseComputeParams reads window_size and filter. It writes the 400 response
// itself and reports ok=false on invalid input.
func parseComputeParams(c *gin.Context) (int, *filter.Filter, bool) {
	windowMinutes, err := config.ParseWindowSize(c.Query("window_size"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, nil, false
	}
	f, err := filter.Compile(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, nil, false
	}
	return windowMinutes, f, true
}

func applyFilter(c *gin.Context, f *filter.Filter, events []models.Event) ([]models.Event, bool) {
	kept, err := f.Apply(events)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return kept, true
}

func respond(c *gin.Context, events []models.Event, windowMinutes int, source string) (models.MovingAverageResponse, bool) {
	metrics.EventsLoaded.WithLabelValues(source).Add(float64(len(events)))
	samples, err := pipeline.Compute(events, windowMinutes, source)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(source, metrics.OutcomeError).Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, apperr.ErrDataFormat) || errors.Is(err, apperr.ErrInvalidWindowSize) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return models.MovingAverageResponse{}, false
	}
	metrics.RunsTotal.WithLabelValues(source, metrics.OutcomeOK).Inc()

	resp := models.MovingAverageResponse{
		RunID:      uuid.New().String(),
		WindowSize: windowMinutes,
		Events:     len(events),
		Samples:    samples,
	}
	c.JSON(http.StatusOK, resp)
	return resp, true
}
