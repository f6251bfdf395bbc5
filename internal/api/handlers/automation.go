package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
)

type AutomationHandler struct {
	automationService *services.AutomationService
	templateService   *services.TemplateService
}

func NewAutomationHandler(automationService *services.AutomationService, templateService *services.TemplateService) *AutomationHandler {
	return &AutomationHandler{automationService: automationService, templateService: templateService}
}

func (h *AutomationHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	settings, err := h.automationService.GetSettings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to fetch automation settings", err)
		return
	}

	utils.SendSuccess(c, "Automation settings retrieved", settings)
}

func (h *AutomationHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	settings, err := h.automationService.UpdateSettings(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "Failed to update automation settings", err)
		return
	}

	utils.SendSuccess(c, "Automation settings updated", settings)
}

func (h *AutomationHandler) ListTemplates(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to fetch templates", err)
		return
	}

	utils.SendSuccess(c, "Templates retrieved successfully", templates)
}

func (h *AutomationHandler) CreateTemplate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, "Failed to create template", err)
		return
	}

	utils.SendCreated(c, "Template created successfully", template)
}

func (h *AutomationHandler) UpdateTemplate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	templateID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), userID, templateID, req)
	if err != nil {
		respondError(c, "Failed to update template", err)
		return
	}

	utils.SendSuccess(c, "Template updated successfully", template)
}

func (h *AutomationHandler) DeleteTemplate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	templateID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), userID, templateID); err != nil {
		respondError(c, "Failed to delete template", err)
		return
	}

	utils.SendSuccess(c, "Template deleted successfully", nil)
}
