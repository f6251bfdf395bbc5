package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var filter services.ReviewFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendValidationError(c, "Invalid query parameters")
		return
	}

	reviews, err := h.reviewService.ListReviews(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, "Failed to fetch reviews", err)
		return
	}

	utils.SendSuccess(c, "Reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), userID, reviewID)
	if err != nil {
		respondError(c, "Failed to fetch review", err)
		return
	}

	utils.SendSuccess(c, "Review retrieved successfully", review)
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.IngestReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	review, err := h.reviewService.IngestReview(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "Failed to create review", err)
		return
	}

	utils.SendCreated(c, "Review created successfully", review)
}

func (h *ReviewHandler) Respond(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	review, err := h.reviewService.Respond(c.Request.Context(), userID, reviewID, req.ResponseText)
	if err != nil {
		respondError(c, "Failed to respond to review", err)
		return
	}

	utils.SendSuccess(c, "Response posted successfully", review)
}

func (h *ReviewHandler) AutoRespond(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.reviewService.AutoRespond(c.Request.Context(), userID, reviewID)
	if err != nil {
		respondError(c, "Failed to auto-respond to review", err)
		return
	}

	utils.SendSuccess(c, "Auto-response generated", result)
}

func (h *ReviewHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	review, err := h.reviewService.SetStatus(c.Request.Context(), userID, reviewID, req.Status)
	if err != nil {
		respondError(c, "Failed to update review status", err)
		return
	}

	utils.SendSuccess(c, "Review status updated", review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), userID, reviewID); err != nil {
		respondError(c, "Failed to delete review", err)
		return
	}

	utils.SendSuccess(c, "Review deleted successfully", nil)
}
