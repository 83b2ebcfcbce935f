package main

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/dashboard_backend/config"
	"github.com/mmdatafocus/dashboard_backend/dashboard"
	"github.com/mmdatafocus/dashboard_backend/middlewares"
	"github.com/mmdatafocus/dashboard_backend/utils"
	"github.com/sirupsen/logrus"
)

type summaryQuery struct {
	PropertyId string `form:"property_id" binding:"required"`
}

// dashboardHandler serves /dashboard/*. The gateway is installed once dependencies connect;
// until then every request gets 503.
type dashboardHandler struct {
	gateway atomic.Pointer[dashboard.Gateway]
	logger  *logrus.Logger
}

func newDashboardHandler(logger *logrus.Logger) *dashboardHandler {
	return &dashboardHandler{logger: logger}
}

func (h *dashboardHandler) setGateway(g *dashboard.Gateway) {
	h.gateway.Store(g)
}

func (h *dashboardHandler) ready() bool {
	return h.gateway.Load() != nil
}

func registerDashboardRoutes(r gin.IRouter, h *dashboardHandler, requireTenant bool) {
	group := r.Group("/dashboard")
	group.Use(h.requireReady, middlewares.RequirePrincipal(requireTenant))
	group.GET("/properties", h.listProperties)
	group.GET("/summary", h.revenueSummary)
}

func (h *dashboardHandler) requireReady(c *gin.Context) {
	if !h.ready() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service not ready"})
		return
	}
	c.Next()
}

func (h *dashboardHandler) listProperties(c *gin.Context) {
	principal, _ := middlewares.PrincipalFromContext(c.Request.Context())
	props := h.gateway.Load().ListProperties(c.Request.Context(), principal)
	c.JSON(http.StatusOK, props)
}

func (h *dashboardHandler) revenueSummary(c *gin.Context) {
	var q summaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id is required"})
		return
	}

	ctx := c.Request.Context()
	principal, _ := middlewares.PrincipalFromContext(ctx)
	resp, err := h.gateway.Load().GetRevenueSummary(ctx, q.PropertyId, principal)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			h.logFailure(ctx, principal, q.PropertyId, err)
		}
		c.JSON(status, gin.H{"error": messageForStatus(status, err)})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// statusForError is the only place dashboard errors become HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, dashboard.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	case errors.Is(err, dashboard.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageForStatus keeps upstream detail out of responses.
func messageForStatus(status int, err error) string {
	switch status {
	case http.StatusForbidden:
		return dashboard.ErrForbidden.Error()
	case http.StatusNotFound:
		return dashboard.ErrNotFound.Error()
	case http.StatusGatewayTimeout:
		return "revenue service timed out"
	case http.StatusBadGateway:
		return dashboard.ErrUpstream.Error()
	default:
		return "internal error"
	}
}

func (h *dashboardHandler) logFailure(ctx context.Context, principal dashboard.Principal, propertyId string, err error) {
	if h.logger == nil {
		return
	}
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	config.LogError(h.logger, "dashboardHandlers.go", "revenueSummary", "GetRevenueSummary", logrus.Fields{
		"tenant_id":      principal.ResolvedTenantId(),
		"property_id":    propertyId,
		"correlation_id": correlationId,
	}, err)
}
