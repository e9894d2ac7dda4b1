package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/equitywire/research/internal/cache"
	"github.com/equitywire/research/internal/models"
	"github.com/equitywire/research/internal/repository"
	"github.com/equitywire/research/internal/services"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the analytics views
type DashboardHandler struct {
	analyticsSvc *services.AnalyticsService
	stockRepo    *repository.StockRepository
	memCache     *cache.MemoryCache
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(analyticsSvc *services.AnalyticsService, stockRepo *repository.StockRepository, memCache *cache.MemoryCache) *DashboardHandler {
	return &DashboardHandler{
		analyticsSvc: analyticsSvc,
		stockRepo:    stockRepo,
		memCache:     memCache,
	}
}

// Dashboard handles GET /dashboard. The invocation instant is captured once
// here and flows through every sub-query of the dashboard build.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	if d, ok := h.memCache.GetDashboard(); ok {
		c.JSON(http.StatusOK, d)
		return
	}

	d, err := h.analyticsSvc.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.memCache.SetDashboard(d)
	c.JSON(http.StatusOK, d)
}

// StockPrices handles GET /stocks/:id/prices?days=N
func (h *DashboardHandler) StockPrices(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "invalid stock ID",
		})
		return
	}

	days := 30
	if v := c.Query("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: "days must be a positive integer",
			})
			return
		}
	}

	stock, err := h.stockRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStockNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "stock not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	now := time.Now()
	series, err := h.analyticsSvc.PriceSeries(c.Request.Context(), []int64{id}, now.Add(-time.Duration(days)*24*time.Hour), services.ChartMaxPoints)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stock":  stock,
		"points": series[id],
	})
}
