// internal/handlers/dashboard.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/earl-stephens/little-shop-base/internal/models"
	"github.com/earl-stephens/little-shop-base/internal/services"
	"github.com/earl-stephens/little-shop-base/internal/utils"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	adminService     *services.AdminService
}

func NewDashboardHandler(dashboardService *services.DashboardService, adminService *services.AdminService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		adminService:     adminService,
	}
}

// GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	merchantID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	userType, _ := utils.GetUserTypeFromContext(c)
	if userType != string(models.UserTypeMerchant) {
		utils.ForbiddenResponse(c, "Merchant access required")
		return
	}

	stats, err := h.dashboardService.Stats(&merchantID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/merchants/:merchant_id/stats
func (h *DashboardHandler) GetMerchantStats(c *gin.Context) {
	merchantID, err := uuid.Parse(c.Param("merchant_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid merchant ID", nil)
		return
	}

	merchant, err := h.adminService.GetMerchant(merchantID)
	if err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			utils.NotFoundResponse(c, "Merchant not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	stats, err := h.dashboardService.Stats(&merchant.ID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"merchant": merchant,
		"stats":    stats,
	})
}
