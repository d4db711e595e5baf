// internal/handlers/admin.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/earl-stephens/little-shop-base/internal/services"
	"github.com/earl-stephens/little-shop-base/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GET /admin/merchants
func (h *AdminHandler) ListMerchants(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	merchants, total, err := h.adminService.ListMerchants(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(merchants, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/merchants/:merchant_id
func (h *AdminHandler) GetMerchant(c *gin.Context) {
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

	utils.SuccessResponse(c, gin.H{
		"merchant": merchant,
	})
}
