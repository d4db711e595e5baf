// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/earl-stephens/little-shop-base/internal/models"
	"github.com/earl-stephens/little-shop-base/internal/utils"
)

var ErrMerchantNotFound = errors.New("merchant not found")

// AdminService backs the admin's merchant directory, from which an admin
// picks the merchant to act on behalf of.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) ListMerchants(params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{}).Where("user_type = ?", models.UserTypeMerchant)

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count merchants: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"created_at", "updated_at", "username", "email", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	// Execute query
	var merchants []models.User
	if err := query.Find(&merchants).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch merchants: %w", err)
	}

	return merchants, total, nil
}

// GetMerchant resolves a merchant user by id. Admins and non-merchant users
// do not resolve; acting on behalf of another admin is not a thing.
func (s *AdminService) GetMerchant(merchantID uuid.UUID) (*models.User, error) {
	var merchant models.User
	if err := s.db.Where("user_type = ?", models.UserTypeMerchant).
		First(&merchant, merchantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &merchant, nil
}
