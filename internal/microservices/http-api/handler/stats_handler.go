package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/huger6/filseries/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.UserStats)
	rg.GET("/activity", h.RecentActivity)
}

func (h *StatsHandler) UserStats(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.svc.UserStats(ctx, userID.(string))
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": stats})
}

func (h *StatsHandler) RecentActivity(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	activity, err := h.svc.RecentActivity(ctx, userID.(string), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": activity})
}
