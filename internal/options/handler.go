package options

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bcmce/exchange-backend/internal/catalog"
	"bcmce/exchange-backend/internal/pricing"
)

type Handler struct {
	service Service
	pricing pricing.Service
}

func NewHandler(service Service, pricingSvc pricing.Service) *Handler {
	return &Handler{service: service, pricing: pricingSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	opts := rg.Group("/options")
	{
		opts.GET("/available", h.Available)
		opts.POST("/purchase", h.Purchase)
		opts.GET("/holdings", h.Holdings)
		opts.GET("/portfolio/stats", h.PortfolioStats)
		opts.POST("/calculate-bid", h.CalculateBid)
		opts.GET("/:id", h.Get)
		opts.GET("/:id/value", h.Value)
		opts.POST("/:id/exercise", h.Exercise)
		opts.POST("/:id/cancel", h.Cancel)
	}
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidMargin),
		errors.Is(err, ErrZeroQuantity),
		errors.Is(err, ErrQuantityExceeded),
		errors.Is(err, pricing.ErrInvalidDuration),
		errors.Is(err, pricing.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrContractNotFound),
		errors.Is(err, catalog.ErrUnknownMaterial),
		errors.Is(err, catalog.ErrUnknownSupplier),
		errors.Is(err, pricing.ErrNoPriceData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrExpiredContract):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) Available(c *gin.Context) {
	quotes, err := h.pricing.CurrentQuotes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *Handler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.service.Purchase(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) Holdings(c *gin.Context) {
	buyerID := c.Query("buyer_id")
	if buyerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer_id is required"})
		return
	}

	var status *Status
	if s := c.Query("status"); s != "" {
		st := Status(s)
		status = &st
	}

	contracts, err := h.service.ListHoldings(c.Request.Context(), buyerID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Read paths report lapsed actives as expired even before the sweep.
	now := time.Now().UTC()
	for i := range contracts {
		if contracts[i].Status == StatusActive && contracts[i].IsExpired(now) {
			contracts[i].Status = StatusExpired
		}
	}

	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	contract, err := h.service.EvaluateExpiry(c.Request.Context(), id, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

func (h *Handler) Value(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	valuation, err := h.service.Valuation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, valuation)
}

func (h *Handler) Exercise(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var delivery DeliveryDetails
	if err := c.ShouldBindJSON(&delivery); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.service.Exercise(c.Request.Context(), id, delivery)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	contract, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

func (h *Handler) PortfolioStats(c *gin.Context) {
	buyerID := c.Query("buyer_id")
	if buyerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer_id is required"})
		return
	}

	stats, err := h.service.PortfolioStats(c.Request.Context(), buyerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) CalculateBid(c *gin.Context) {
	var req EvaluateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	evaluation, err := h.service.EvaluateBid(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, evaluation)
}
