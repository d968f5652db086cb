// Package api exposes the thin request-serving surface. Tracking requests
// only register work; the pipeline's retry and backoff machinery is invisible
// here.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/tracker"
)

type handlers struct {
	db      *gorm.DB
	tracker *tracker.Service
	log     *zap.Logger
}

type trackRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

type priceQuery struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

func (h *handlers) trackStock(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := models.NormalizeSymbol(req.Symbol); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stock, err := h.tracker.Track(c.Request.Context(), req.Symbol)
	if err != nil {
		h.log.Error("track request failed", zap.String("symbol", req.Symbol), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (h *handlers) listStocks(c *gin.Context) {
	stocks, err := h.tracker.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func (h *handlers) untrackStock(c *gin.Context) {
	stock, err := h.tracker.Deactivate(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "symbol not tracked"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (h *handlers) getPrices(c *gin.Context) {
	sym, err := models.NormalizeSymbol(c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var q priceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := h.db.WithContext(c.Request.Context()).
		Where("symbol = ?", sym).
		Order("date")
	if q.Start != "" {
		start, err := time.Parse("2006-01-02", q.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, use YYYY-MM-DD"})
			return
		}
		query = query.Where("date >= ?", start)
	}
	if q.End != "" {
		end, err := time.Parse("2006-01-02", q.End)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, use YYYY-MM-DD"})
			return
		}
		query = query.Where("date <= ?", end)
	}

	var prices []models.PriceRecord
	if err := query.Find(&prices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prices)
}

// SetupRoutes wires the HTTP surface.
func SetupRoutes(db *gorm.DB, tr *tracker.Service, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := &handlers{db: db, tracker: tr, log: log}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/stocks/track", h.trackStock)
	r.GET("/api/stocks", h.listStocks)
	r.DELETE("/api/stocks/:symbol", h.untrackStock)
	r.GET("/api/stocks/:symbol/prices", h.getPrices)

	return r
}
