// internal/services/dashboard_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/earl-stephens/little-shop-base/internal/models"
)

// DashboardService computes the merchant to-do numbers. Everything here is
// recomputed per request; there is no cached state.
type DashboardService struct {
	db *gorm.DB
}

type MerchantStats struct {
	UnfulfilledOrders int64           `json:"unfulfilled_orders"`
	RevenueImpact     decimal.Decimal `json:"revenue_impact"`
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// UnfulfilledCount counts order lines still waiting on fulfillment. A nil
// merchant counts platform-wide; otherwise only lines for that merchant's
// items are counted.
func (s *DashboardService) UnfulfilledCount(merchantID *uuid.UUID) (int64, error) {
	query := s.db.Model(&models.OrderItem{}).
		Where("order_items.fulfillment = ?", models.FulfillmentStatusUnfulfilled)

	if merchantID != nil {
		query = query.
			Joins("JOIN items ON items.id = order_items.item_id").
			Where("items.user_id = ?", *merchantID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unfulfilled order lines: %w", err)
	}

	return count, nil
}

// RevenueImpact sums quantity times unit price over unfulfilled order lines,
// scoped the same way as UnfulfilledCount.
func (s *DashboardService) RevenueImpact(merchantID *uuid.UUID) (decimal.Decimal, error) {
	query := s.db.Model(&models.OrderItem{}).
		Where("order_items.fulfillment = ?", models.FulfillmentStatusUnfulfilled)

	if merchantID != nil {
		query = query.
			Joins("JOIN items ON items.id = order_items.item_id").
			Where("items.user_id = ?", *merchantID)
	}

	row := query.
		Select("COALESCE(SUM(order_items.quantity * order_items.price), 0)").
		Row()

	var impact decimal.Decimal
	if err := row.Scan(&impact); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue impact: %w", err)
	}

	return impact, nil
}

func (s *DashboardService) Stats(merchantID *uuid.UUID) (*MerchantStats, error) {
	count, err := s.UnfulfilledCount(merchantID)
	if err != nil {
		return nil, err
	}

	impact, err := s.RevenueImpact(merchantID)
	if err != nil {
		return nil, err
	}

	return &MerchantStats{
		UnfulfilledOrders: count,
		RevenueImpact:     impact,
	}, nil
}
