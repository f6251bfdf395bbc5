package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
}

func NewCampaignHandler(campaignService *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	campaigns, err := h.campaignService.ListCampaigns(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to fetch campaigns", err)
		return
	}

	utils.SendSuccess(c, "Campaigns retrieved successfully", campaigns)
}

func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}

	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), userID, campaignID)
	if err != nil {
		respondError(c, "Failed to fetch campaign", err)
		return
	}

	utils.SendSuccess(c, "Campaign retrieved successfully", campaign)
}

func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "Failed to create campaign", err)
		return
	}

	utils.SendCreated(c, "Campaign created successfully", campaign)
}

func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	campaign, err := h.campaignService.UpdateCampaign(c.Request.Context(), userID, campaignID, req)
	if err != nil {
		respondError(c, "Failed to update campaign", err)
		return
	}

	utils.SendSuccess(c, "Campaign updated successfully", campaign)
}

func (h *CampaignHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	campaign, err := h.campaignService.SetStatus(c.Request.Context(), userID, campaignID, req.Status)
	if err != nil {
		respondError(c, "Failed to update campaign status", err)
		return
	}

	utils.SendSuccess(c, "Campaign status updated", campaign)
}

func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.campaignService.DeleteCampaign(c.Request.Context(), userID, campaignID); err != nil {
		respondError(c, "Failed to delete campaign", err)
		return
	}

	utils.SendSuccess(c, "Campaign deleted successfully", nil)
}

func (h *CampaignHandler) AddRecipients(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.AddRecipientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	recipients, err := h.campaignService.AddRecipients(c.Request.Context(), userID, campaignID, req.Recipients)
	if err != nil {
		respondError(c, "Failed to add recipients", err)
		return
	}

	utils.SendCreated(c, "Recipients added successfully", recipients)
}

func (h *CampaignHandler) SendCampaign(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.campaignService.Dispatch(c.Request.Context(), userID, campaignID)
	if err != nil {
		respondError(c, "Failed to send campaign", err)
		return
	}

	utils.SendSuccess(c, "Campaign sent", result)
}

func (h *CampaignHandler) RecordConversion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipientID, ok := pathID(c, "recipient_id")
	if !ok {
		return
	}

	recipient, err := h.campaignService.RecordConversion(c.Request.Context(), userID, campaignID, recipientID)
	if err != nil {
		respondError(c, "Failed to record conversion", err)
		return
	}

	utils.SendSuccess(c, "Conversion recorded", recipient)
}
