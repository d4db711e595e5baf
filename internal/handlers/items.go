// internal/handlers/items.go
package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/earl-stephens/little-shop-base/internal/models"
	"github.com/earl-stephens/little-shop-base/internal/services"
	"github.com/earl-stephens/little-shop-base/internal/utils"
)

type ItemHandler struct {
	itemService      *services.ItemService
	dashboardService *services.DashboardService
	adminService     *services.AdminService
	storageService   *services.StorageService
}

func NewItemHandler(
	itemService *services.ItemService,
	dashboardService *services.DashboardService,
	adminService *services.AdminService,
	storageService *services.StorageService,
) *ItemHandler {
	return &ItemHandler{
		itemService:      itemService,
		dashboardService: dashboardService,
		adminService:     adminService,
		storageService:   storageService,
	}
}

// resolveActingContext works out whose catalog this request operates on.
// A merchant always acts on its own catalog. An admin reaching the same
// handlers through the admin routes acts on the merchant named in the URL,
// which must resolve to an existing merchant user. A merchant hitting the
// admin routes is rejected.
func (h *ItemHandler) resolveActingContext(c *gin.Context) (*services.ActingContext, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}

	actingID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return nil, false
	}

	userType, _ := utils.GetUserTypeFromContext(c)

	merchantParam := c.Param("merchant_id")
	if merchantParam == "" {
		// Merchant-facing routes; admins have their own per-merchant routes.
		if userType != string(models.UserTypeMerchant) {
			utils.ForbiddenResponse(c, "Merchant access required")
			return nil, false
		}
		return &services.ActingContext{
			ActingPrincipalID: actingID,
			TargetMerchantID:  actingID,
		}, true
	}

	if userType != string(models.UserTypeAdmin) {
		utils.ForbiddenResponse(c, "Admin access required")
		return nil, false
	}

	merchantID, err := uuid.Parse(merchantParam)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid merchant ID", nil)
		return nil, false
	}

	merchant, err := h.adminService.GetMerchant(merchantID)
	if err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			utils.NotFoundResponse(c, "Merchant not found")
			return nil, false
		}
		utils.InternalErrorResponse(c, err.Error())
		return nil, false
	}

	return &services.ActingContext{
		ActingPrincipalID: actingID,
		TargetMerchantID:  merchant.ID,
	}, true
}

// getOwnedItem loads the item and verifies it belongs to the target merchant,
// so an admin acting on merchant A cannot reach merchant B's items through
// the item id alone.
func (h *ItemHandler) getOwnedItem(c *gin.Context, actx *services.ActingContext) (*models.Item, bool) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return nil, false
	}

	item, err := h.itemService.Get(itemID)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			utils.NotFoundResponse(c, "Item not found")
			return nil, false
		}
		utils.InternalErrorResponse(c, err.Error())
		return nil, false
	}

	if item.UserID != actx.TargetMerchantID {
		utils.NotFoundResponse(c, "Item not found")
		return nil, false
	}

	return item, true
}

// GET /dashboard/items
// GET /admin/merchants/:merchant_id/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	actx, ok := h.resolveActingContext(c)
	if !ok {
		return
	}

	listing, err := h.itemService.ListForOwner(actx.TargetMerchantID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	stats, err := h.dashboardService.Stats(&actx.TargetMerchantID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"items":              listing.Items,
		"placeholder_items":  listing.Placeholder,
		"custom_image_items": listing.Custom,
		"stats":              stats,
	})
}

// GET /dashboard/items/new
// GET /admin/merchants/:merchant_id/items/new
func (h *ItemHandler) NewItem(c *gin.Context) {
	actx, ok := h.resolveActingContext(c)
	if !ok {
		return
	}

	// Blank form context for the create view.
	utils.SuccessResponse(c, gin.H{
		"merchant_id": actx.TargetMerchantID,
		"fields":      services.ItemFields{},
	})
}

// GET /dashboard/items/:id/edit
// GET /admin/merchants/:merchant_id/items/:id/edit
func (h *ItemHandler) EditItem(c *gin.Context) {
	actx, ok := h.resolveActingContext(c)
	if !ok {
		return
	}

	item, ok := h.getOwnedItem(c, actx)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"merchant_id": actx.TargetMerchantID,
		"item":        item,
	})
}

// POST /dashboard/items
// POST /admin/merchants/:merchant_id/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	actx, ok := h.resolveActingContext(c)
	if !ok {
		return
	}

	var fields services.ItemFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	item, validationErrs, err := h.itemService.Create(*actx, fields)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if len(validationErrs) > 0 {
		message := fmt.Sprintf("%d errors prohibited this item from being saved.", len(validationErrs))
		utils.UnprocessableResponse(c, message, validationErrs, fields)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": fmt.Sprintf("%s has been added!", item.Name),
		"item":    item,
	})
}

// PUT /dashboard/items/:id
// PUT /admin/merchants/:merchant_id/items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	actx, ok := h.resolveActingContext(c)
	if !ok {
		return
	}

	item, ok := h.getOwnedItem(c, actx)
	if !ok {
		return
	}

	var fields services.ItemFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	updated, validationErrs, err := h.itemService.Update(item.ID, fields)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if len(validationErrs) > 0 {
		message := fmt.Sprintf("%d errors prohibited this item from being saved.", len(validationErrs))
		utils.UnprocessableResponse(c, message, validationErrs, fields)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": fmt.Sprintf("%s has been updated!", updated.Name),
		"item":    updated,
	})
}

// PATCH /dashboard/items/:id/enable
// PATCH /admin/merchants/:merchant_id/items/:id/enable
func (h *ItemHandler) EnableItem(c *gin.Context) {
	h.setItemActive(c, true)
}

// PATCH /dashboard/items/:id/disable
// PATCH /admin/merchants/:merchant_id/items/:id/disable
func (h *ItemHandler) DisableItem(c *gin.Context) {
	h.setItemActive(c, false)
}

func (h *ItemHandler) setItemActive(c *gin.Context, active bool) {
	actx, ok := h.resolveActingContext(c)
	if !ok {
		return
	}

	item, ok := h.getOwnedItem(c, actx)
	if !ok {
		return
	}

	updated, err := h.itemService.SetActive(item.ID, active)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"item": updated,
	})
}

// DELETE /dashboard/items/:id
// DELETE /admin/merchants/:merchant_id/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	actx, ok := h.resolveActingContext(c)
	if !ok {
		return
	}

	item, ok := h.getOwnedItem(c, actx)
	if !ok {
		return
	}

	deleted, err := h.itemService.DeleteIfUnordered(item.ID)
	if err != nil {
		if errors.Is(err, services.ErrItemEverOrdered) {
			utils.ConflictResponse(c, fmt.Sprintf("Attempt to delete %s was thwarted!", deleted.Name))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"item": deleted,
	})
}

// POST /dashboard/items/upload-image
func (h *ItemHandler) UploadItemImage(c *gin.Context) {
	if _, exists := utils.GetUserIDFromContext(c); !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "No image uploaded", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read uploaded file", err.Error())
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadItemImage(file, fileHeader)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"image": result,
	})
}
