package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to fetch dashboard statistics", err)
		return
	}

	utils.SendSuccess(c, "Dashboard statistics retrieved", stats)
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	period, ok := queryInt(c, "period")
	if !ok {
		return
	}

	trends, err := h.analyticsService.Trends(c.Request.Context(), userID, period)
	if err != nil {
		respondError(c, "Failed to fetch trends", err)
		return
	}

	utils.SendSuccess(c, "Trends retrieved", trends)
}

func (h *AnalyticsHandler) RatingDistribution(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	distribution, err := h.analyticsService.RatingDistribution(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to fetch rating distribution", err)
		return
	}

	utils.SendSuccess(c, "Rating distribution retrieved", distribution)
}

func (h *AnalyticsHandler) CampaignPerformance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	performance, err := h.analyticsService.CampaignPerformance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "Failed to fetch campaign performance", err)
		return
	}

	utils.SendSuccess(c, "Campaign performance retrieved", performance)
}

func (h *AnalyticsHandler) MonthlyReport(c *gin.Context) {
	userID, month, year, ok := h.monthParams(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.MonthlyReport(c.Request.Context(), userID, month, year)
	if err != nil {
		respondError(c, "Failed to fetch monthly report", err)
		return
	}

	utils.SendSuccess(c, "Monthly report retrieved", report)
}

func (h *AnalyticsHandler) ExportMonthlyReport(c *gin.Context) {
	userID, month, year, ok := h.monthParams(c)
	if !ok {
		return
	}

	export, err := h.analyticsService.ExportMonthlyReport(c.Request.Context(), userID, month, year)
	if err != nil {
		respondError(c, "Failed to export monthly report", err)
		return
	}

	utils.SendCreated(c, "Monthly report exported", export)
}

func (h *AnalyticsHandler) monthParams(c *gin.Context) (uint, int, int, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return 0, 0, 0, false
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return 0, 0, 0, false
	}
	year, ok := queryInt(c, "year")
	if !ok {
		return 0, 0, 0, false
	}
	return userID, month, year, true
}
