package handlers

import (
	"log/slog"
	"net/http"

	"shop-service/pkg/ctxmanage"
	"shop-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ShopkeeperStats(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	stats, err := h.r.GetStats(c.Request.Context())
	if err != nil {
		slog.Error("error fetching stats", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ShopkeeperAnalytics(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	series, err := h.r.SalesSeries(c.Request.Context())
	if err != nil {
		slog.Error("error fetching sales series", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analytics"})
		return
	}

	categories, err := h.r.CategoryDistribution(c.Request.Context())
	if err != nil {
		slog.Error("error fetching category distribution", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sales":      series,
		"categories": categories,
	})
}
