// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ParleyLabs/chatdeck-go/internal/application/services"
	"github.com/ParleyLabs/chatdeck-go/internal/domain/analytics"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/logging"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/observability/performance"
	"github.com/ParleyLabs/chatdeck-go/internal/presentation/http/middleware"
)

// maxBatchQueries bounds one batch request.
const maxBatchQueries = 20

// AnalyticsHandlers contains the conversation analytics HTTP handlers
type AnalyticsHandlers struct {
	analyticsService *services.ConversationAnalyticsService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(analyticsService *services.ConversationAnalyticsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		analyticsService: analyticsService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// GetConversations handles GET /api/v1/analytics/conversations
func (h *AnalyticsHandlers) GetConversations(c *gin.Context) {
	start := time.Now()
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("get_conversations_request", tenantCtx.TenantID)
	defer marker.Complete()

	w, err := parseWindow(c)
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := services.DefaultReportOptions()
	opts.IncludeHeatmap = c.Query("include_heatmap") == "true"
	opts.IncludeConversations = c.Query("include_conversations") == "true"
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		opts.ConversationLimit = v
	}
	if v, err := strconv.Atoi(c.Query("top_k")); err == nil && v > 0 {
		opts.TopQuestionCount = v
	}

	report, err := h.analyticsService.GetConversationAnalytics(c.Request.Context(), tenantCtx, w, opts)
	if err != nil {
		marker.SetSuccess(false)
		marker.SetError(err)
		c.JSON(statusForServiceError(err), gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	h.logger.Analytics().Info("Conversation analytics request completed",
		"tenantId", tenantCtx.TenantID,
		"periodDays", report.PeriodDays,
		"duration", time.Since(start))
	c.JSON(http.StatusOK, report)
}

// batchWindowRequest is one entry of a batch request body.
type batchWindowRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

type batchRequest struct {
	Windows []batchWindowRequest `json:"windows" binding:"required"`
}

// PostConversationsBatch handles POST /api/v1/analytics/conversations/batch
func (h *AnalyticsHandlers) PostConversationsBatch(c *gin.Context) {
	start := time.Now()
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_conversations_batch_request", tenantCtx.TenantID)
	defer marker.Complete()

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Windows) == 0 || len(req.Windows) > maxBatchQueries {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "windows must contain between 1 and 20 entries"})
		return
	}

	queries := make([]services.BatchQuery, 0, len(req.Windows))
	for _, entry := range req.Windows {
		w, err := windowFromDates(entry.StartDate, entry.EndDate)
		if err != nil {
			marker.SetSuccess(false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		queries = append(queries, services.BatchQuery{TenantCtx: tenantCtx, Window: w})
	}

	results := h.analyticsService.GetBatchAnalytics(c.Request.Context(), queries)

	out := make([]gin.H, len(results))
	for i, result := range results {
		if result.Err != nil {
			out[i] = gin.H{"error": result.Err.Error()}
			continue
		}
		out[i] = gin.H{"report": result.Report}
	}

	marker.SetSuccess(true)
	h.logger.Analytics().Info("Batch analytics request completed",
		"tenantId", tenantCtx.TenantID,
		"queries", len(queries),
		"duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"results": out})
}

// parseWindow reads the start_date/end_date query params. end_date is
// inclusive, so the window extends to the following midnight.
func parseWindow(c *gin.Context) (analytics.Window, error) {
	return windowFromDates(c.Query("start_date"), c.Query("end_date"))
}

func windowFromDates(startDate, endDate string) (analytics.Window, error) {
	start, err := time.ParseInLocation(analytics.DayKeyFormat, startDate, time.UTC)
	if err != nil {
		return analytics.Window{}, services.ErrInvalidWindow
	}
	end, err := time.ParseInLocation(analytics.DayKeyFormat, endDate, time.UTC)
	if err != nil {
		return analytics.Window{}, services.ErrInvalidWindow
	}

	w := analytics.Window{Start: start, End: end.AddDate(0, 0, 1)}
	if w.IsEmpty() {
		return analytics.Window{}, services.ErrInvalidWindow
	}
	return w, nil
}

// statusForServiceError maps pipeline errors to HTTP statuses. Tier
// failures degrade inside the pipeline, so only input errors surface here.
func statusForServiceError(err error) int {
	switch err {
	case services.ErrInvalidWindow:
		return http.StatusBadRequest
	case services.ErrMissingTenant:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
