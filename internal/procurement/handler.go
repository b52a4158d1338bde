package procurement

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bcmce/exchange-backend/internal/catalog"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	reqs := rg.Group("/requirements")
	{
		reqs.POST("", h.PostRequirement)
		reqs.GET("", h.ListRequirements)
		reqs.GET("/:id", h.GetRequirement)
		reqs.GET("/:id/bids", h.ListBids)
		reqs.POST("/:id/close", h.CloseRequirement)
	}

	bids := rg.Group("/bids")
	{
		bids.POST("", h.SubmitBid)
		bids.POST("/:id/accept", h.AcceptBid)
		bids.POST("/:id/reject", h.RejectBid)
		bids.POST("/:id/withdraw", h.WithdrawBid)
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRequirementNotFound),
		errors.Is(err, ErrBidNotFound),
		errors.Is(err, catalog.ErrUnknownMaterial),
		errors.Is(err, catalog.ErrUnknownSupplier):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrBiddingClosed),
		errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *Handler) PostRequirement(c *gin.Context) {
	var req PostRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requirement, err := h.service.PostRequirement(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, requirement)
}

func (h *Handler) ListRequirements(c *gin.Context) {
	var status *RequirementStatus
	if s := c.Query("status"); s != "" {
		st := RequirementStatus(s)
		status = &st
	}

	requirements, err := h.service.ListRequirements(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, requirements)
}

func (h *Handler) GetRequirement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	requirement, err := h.service.GetRequirement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, requirement)
}

func (h *Handler) CloseRequirement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.CloseRequirement(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (h *Handler) ListBids(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	bids, err := h.service.ListBids(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bids)
}

func (h *Handler) SubmitBid(c *gin.Context) {
	var req SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.service.SubmitBid(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

func (h *Handler) AcceptBid(c *gin.Context) {
	h.transitionBid(c, h.service.AcceptBid)
}

func (h *Handler) RejectBid(c *gin.Context) {
	h.transitionBid(c, h.service.RejectBid)
}

func (h *Handler) WithdrawBid(c *gin.Context) {
	h.transitionBid(c, h.service.WithdrawBid)
}

func (h *Handler) transitionBid(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*Bid, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	bid, err := fn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bid)
}
