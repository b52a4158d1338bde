package pricing

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bcmce/exchange-backend/internal/catalog"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	pricing := rg.Group("/pricing")
	{
		pricing.GET("/current", h.CurrentQuotes)
		pricing.POST("/observations", h.RecordObservation)
		pricing.GET("/:code", h.QuoteByCode)
		pricing.GET("/:code/history", h.History)
		pricing.GET("/:code/export", h.ExportHistory)
	}
}

func (h *Handler) CurrentQuotes(c *gin.Context) {
	quotes, err := h.service.CurrentQuotes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *Handler) RecordObservation(c *gin.Context) {
	var req RecordObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	obs, err := h.service.RecordObservation(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, catalog.ErrUnknownMaterial), errors.Is(err, catalog.ErrUnknownSupplier):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, obs)
}

func (h *Handler) QuoteByCode(c *gin.Context) {
	quote, err := h.service.QuoteByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownMaterial) || errors.Is(err, ErrNoPriceData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *Handler) History(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	history, err := h.service.History(c.Request.Context(), c.Param("code"), days)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownMaterial) || errors.Is(err, ErrNoPriceData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *Handler) ExportHistory(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	format := c.DefaultQuery("format", "csv")

	history, err := h.service.History(c.Request.Context(), c.Param("code"), days)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownMaterial) || errors.Is(err, ErrNoPriceData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch format {
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_prices.csv", history.MaterialCode))
		c.Header("Content-Type", "text/csv")
		if err := WriteHistoryCSV(c.Writer, history); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	case "xlsx":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_prices.xlsx", history.MaterialCode))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := WriteHistoryXLSX(c.Writer, history); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + format})
	}
}
