package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omnidesk/autoreply-service/internal/api/dto"
	"github.com/omnidesk/autoreply-service/internal/api/middleware"
	domainerrors "github.com/omnidesk/autoreply-service/internal/domain/errors"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/services/analytics"
)

// AnalyticsHandler handles performance analytics endpoints.
type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(aggregator *analytics.Aggregator) *AnalyticsHandler {
	return &AnalyticsHandler{
		aggregator: aggregator,
	}
}

// AgentPerformance handles GET /tenants/{tenantId}/agents/{agentId}/performance
// @Summary Agent performance
// @Description Returns daily performance records for one agent over a date range
// @Tags Analytics
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param agentId path string true "Agent ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.AgentPerformanceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/autoreply-service/tenants/{tenantId}/agents/{agentId}/performance [get]
func (h *AnalyticsHandler) AgentPerformance(c *gin.Context) {
	tenantCtx := middleware.GetTenantContext(c)

	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	records, err := h.aggregator.AgentPerformance(c.Request.Context(),
		tenantCtx.TenantID, tenantCtx.AgentID, from, to)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to load performance", err))
		return
	}
	if records == nil {
		records = []*models.PerformanceRecord{}
	}

	c.JSON(http.StatusOK, dto.AgentPerformanceResponse{
		AgentID: tenantCtx.AgentID,
		From:    from.Format(models.PerformanceDateLayout),
		To:      to.Format(models.PerformanceDateLayout),
		Records: records,
	})
}

// SystemPerformance handles GET /tenants/{tenantId}/performance
// @Summary Tenant performance summary
// @Description Returns a cross-agent rollup for the tenant over a date range
// @Tags Analytics
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} analytics.Summary
// @Failure 400 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/autoreply-service/tenants/{tenantId}/performance [get]
func (h *AnalyticsHandler) SystemPerformance(c *gin.Context) {
	tenantCtx := middleware.GetTenantContext(c)

	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	summary, err := h.aggregator.SystemPerformance(c.Request.Context(), tenantCtx.TenantID, from, to)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to load performance summary", err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	var query dto.PerformanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid query parameters", err.Error()))
		return time.Time{}, time.Time{}, false
	}

	from, err := time.Parse(models.PerformanceDateLayout, query.From)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid from date", err.Error()))
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(models.PerformanceDateLayout, query.To)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid to date", err.Error()))
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid date range", "to is before from"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
