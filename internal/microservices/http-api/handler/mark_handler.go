package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/huger6/filseries/internal/microservices/http-api/dto"
	"github.com/huger6/filseries/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type MarkHandler struct {
	svc service.MarkService
}

func NewMarkHandler(svc service.MarkService) *MarkHandler {
	return &MarkHandler{svc: svc}
}

func (h *MarkHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:kind/seen/add", h.AddSeen)
	rg.POST("/:kind/seen/remove", h.RemoveSeen)
	rg.POST("/:kind/seen/update", h.UpdateSeen)
	rg.POST("/:kind/seen/page", h.SeenPage)
	rg.POST("/:kind/watchlist/add", h.AddWatchlist)
	rg.POST("/:kind/watchlist/remove", h.RemoveWatchlist)
	rg.POST("/:kind/watchlist/page", h.WatchlistPage)
}

// RegisterTitleRoutes mounts the title-facing endpoints that also serve
// anonymous callers; those answer with all-false membership.
func (h *MarkHandler) RegisterTitleRoutes(rg *gin.RouterGroup) {
	rg.POST("/overlay", h.Overlay)
	rg.GET("/:kind/:id", h.Detail)
}

// markErrorStatus maps service errors onto the response contract.
func markErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrMarkNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRelationConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCursor),
		errors.Is(err, service.ErrAlreadyMarked),
		errors.Is(err, service.ErrInvalidItemID),
		errors.Is(err, service.ErrInvalidItemKind),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidSeason),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrSeriesOnlyField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func ok(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func (h *MarkHandler) AddSeen(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req dto.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.svc.AddSeen(ctx, userID.(string), c.Param("kind"), req.ID, service.MarkFields{
		Rating:         req.Rating,
		ProgressStatus: req.Status,
		LastSeasonSeen: req.LastSeasonSeen,
	})
	if err != nil {
		fail(c, markErrorStatus(err), err.Error())
		return
	}
	ok(c, "added to seen list")
}

func (h *MarkHandler) RemoveSeen(c *gin.Context) {
	h.removeMark(c, h.svc.RemoveSeen, "removed from seen list")
}

func (h *MarkHandler) UpdateSeen(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req dto.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.svc.UpdateSeen(ctx, userID.(string), c.Param("kind"), req.ID, service.MarkFields{
		Rating:         req.Rating,
		ProgressStatus: req.Status,
		LastSeasonSeen: req.LastSeasonSeen,
	})
	if err != nil {
		fail(c, markErrorStatus(err), err.Error())
		return
	}
	ok(c, "mark updated")
}

func (h *MarkHandler) AddWatchlist(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req dto.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.AddWatchlist(ctx, userID.(string), c.Param("kind"), req.ID); err != nil {
		fail(c, markErrorStatus(err), err.Error())
		return
	}
	ok(c, "added to watchlist")
}

func (h *MarkHandler) RemoveWatchlist(c *gin.Context) {
	h.removeMark(c, h.svc.RemoveWatchlist, "removed from watchlist")
}

func (h *MarkHandler) removeMark(c *gin.Context, remove func(context.Context, string, string, int64) error, message string) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req dto.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := remove(ctx, userID.(string), c.Param("kind"), req.ID); err != nil {
		fail(c, markErrorStatus(err), err.Error())
		return
	}
	ok(c, message)
}

func (h *MarkHandler) SeenPage(c *gin.Context) {
	h.page(c, "seen")
}

func (h *MarkHandler) WatchlistPage(c *gin.Context) {
	h.page(c, "watchlist")
}

func (h *MarkHandler) page(c *gin.Context, relation string) {
	userID, exists := c.Get("userID")
	if !exists {
		fail(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req dto.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid pagination parameters")
		return
	}

	cursor, limit, err := service.ValidatePageRequest(req.LastID, req.LastDate, req.Limit)
	if err != nil {
		fail(c, markErrorStatus(err), err.Error())
		return
	}

	// Page fetch fans out one metadata lookup per mark; give it more room
	// than the point operations.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	results, hasMore, err := h.svc.Page(ctx, userID.(string), c.Param("kind"), relation, cursor, limit)
	if err != nil {
		fail(c, markErrorStatus(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"results":  results,
		"has_more": hasMore,
	})
}

// Overlay resolves seen/watchlist membership for a batch of catalog ids,
// e.g. to decorate search result cards. Works without authentication; the
// anonymous answer is all-false.
func (h *MarkHandler) Overlay(c *gin.Context) {
	var userID string
	if v, exists := c.Get("userID"); exists {
		userID = v.(string)
	}

	var req dto.OverlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	flags, err := h.svc.Overlay(ctx, userID, req.IDs)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": flags})
}

// Detail returns the caller's marks for one title (detail page payload).
func (h *MarkHandler) Detail(c *gin.Context) {
	var userID string
	if v, exists := c.Get("userID"); exists {
		userID = v.(string)
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid item id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.svc.Detail(ctx, userID, c.Param("kind"), itemID)
	if err != nil {
		fail(c, markErrorStatus(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": detail})
}
