package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"peoplework/internal/service"
)

// ReviewHandler mantiene dependencias para endpoints de reseñas.
type ReviewHandler struct {
	logger     *zap.Logger
	reviewServ *service.ReviewService
}

func NewReviewHandler(logger *zap.Logger, reviewServ *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		logger:     logger,
		reviewServ: reviewServ,
	}
}

// Create maneja POST /api/reviews (solo clientes).
func (h *ReviewHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondFailed(c, http.StatusUnauthorized, "Unauthorized", identMissingToken)
		return
	}

	var req struct {
		Seller      string `json:"seller" binding:"required"`
		Appointment string `json:"appointment" binding:"required"`
		Rating      int    `json:"rating" binding:"required,min=1,max=5"`
		Comment     string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create review request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	review, err := h.reviewServ.Create(c.Request.Context(), service.CreateReviewInput{
		CustomerID:    claims.UserID,
		SellerID:      req.Seller,
		AppointmentID: req.Appointment,
		Rating:        req.Rating,
		Comment:       req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAppointmentNotEligible):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid appointment or appointment not completed."})
		case errors.Is(err, service.ErrDuplicateReview):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "You have already reviewed this appointment."})
		case errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "rating must be between 1 and 5"})
		default:
			h.logger.Error("create review failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Review created successfully",
		"data":    review,
	})
}

// List maneja GET /api/reviews (público, paginado).
func (h *ReviewHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 10)

	reviews, total, err := h.reviewServ.List(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("list reviews failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not list reviews"})
		return
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reviews fetched successfully",
		"data":    gin.H{"reviews": reviews},
		"pagination": gin.H{
			"totalReviews": total,
			"totalPages":   totalPages,
			"currentPage":  page,
			"limit":        limit,
		},
	})
}

// GetByID maneja GET /api/reviews/:id.
func (h *ReviewHandler) GetByID(c *gin.Context) {
	review, err := h.reviewServ.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Review not found"})
			return
		}
		h.logger.Error("get review failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not fetch review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": review})
}

// Update maneja PATCH /api/reviews/:id (solo el autor).
func (h *ReviewHandler) Update(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondFailed(c, http.StatusUnauthorized, "Unauthorized", identMissingToken)
		return
	}

	var req struct {
		Rating  *int    `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update review request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	review, err := h.reviewServ.Update(c.Request.Context(), c.Param("id"), claims.UserID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Review not found or unauthorized"})
		case errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "rating must be between 1 and 5"})
		default:
			h.logger.Error("update review failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "could not update review"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review updated successfully", "data": review})
}

// Delete maneja DELETE /api/reviews/:id (solo el autor, borrado lógico).
func (h *ReviewHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondFailed(c, http.StatusUnauthorized, "Unauthorized", identMissingToken)
		return
	}

	if err := h.reviewServ.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Review not found or unauthorized"})
			return
		}
		h.logger.Error("delete review failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not delete review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review deleted successfully"})
}
