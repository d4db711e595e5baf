package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"gorm.io/gorm"

	"github.com/earl-stephens/little-shop-base/internal/models"
	"github.com/earl-stephens/little-shop-base/internal/services"
)

type dashboardServiceSuite struct {
	suite.Suite

	db        *gorm.DB
	svc       *services.DashboardService
	items     *services.ItemService
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestDashboardServiceSuite(t *testing.T) {
	suite.Run(t, new(dashboardServiceSuite))
}

// before all tests in the suite
func (suite *dashboardServiceSuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.db, err = openTestDB(connStr)
	suite.NoError(err)

	suite.svc = services.NewDashboardService(suite.db)
	suite.items = services.NewItemService(suite.db)
}

// after all tests in the suite
func (suite *dashboardServiceSuite) TearDownSuite() {
	ctx := suite.T().Context()

	closeTestDB(suite.db)
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *dashboardServiceSuite) TestStatsEmpty() {
	defer suite.deleteAll()

	t := suite.T()
	merchant := suite.createMerchant()

	stats, err := suite.svc.Stats(&merchant.ID)
	require.NoError(t, err)

	assert.Zero(t, stats.UnfulfilledOrders)
	assert.True(t, decimal.Zero.Equal(stats.RevenueImpact), "impact %s", stats.RevenueImpact)
}

func (suite *dashboardServiceSuite) TestStats() {
	defer suite.deleteAll()

	t := suite.T()
	merchant := suite.createMerchant()
	item := suite.createItem(merchant)

	// Three unfulfilled lines: 1x3.00 + 2x4.00 + 3x5.00 = 34.00 at stake.
	// One sits on a cancelled order and still counts.
	suite.placeOrderLine(item, 1, "3.00", models.FulfillmentStatusUnfulfilled, models.OrderStatusPending)
	suite.placeOrderLine(item, 2, "4.00", models.FulfillmentStatusUnfulfilled, models.OrderStatusPending)
	suite.placeOrderLine(item, 3, "5.00", models.FulfillmentStatusUnfulfilled, models.OrderStatusCancelled)

	// Fulfilled lines do not move the numbers
	suite.placeOrderLine(item, 10, "100.00", models.FulfillmentStatusFulfilled, models.OrderStatusCompleted)

	stats, err := suite.svc.Stats(&merchant.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.UnfulfilledOrders)
	assert.True(t, decimal.RequireFromString("34").Equal(stats.RevenueImpact),
		"impact %s", stats.RevenueImpact)
}

func (suite *dashboardServiceSuite) TestStatsScopedToMerchant() {
	defer suite.deleteAll()

	t := suite.T()
	merchant := suite.createMerchant()
	other := suite.createMerchant()

	item := suite.createItem(merchant)
	otherItem := suite.createItem(other)

	suite.placeOrderLine(item, 1, "3.00", models.FulfillmentStatusUnfulfilled, models.OrderStatusPending)
	suite.placeOrderLine(otherItem, 1, "100.00", models.FulfillmentStatusUnfulfilled, models.OrderStatusPending)

	stats, err := suite.svc.Stats(&merchant.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.UnfulfilledOrders)
	assert.True(t, decimal.RequireFromString("3").Equal(stats.RevenueImpact),
		"impact %s", stats.RevenueImpact)

	// A nil merchant counts the whole platform
	platform, err := suite.svc.Stats(nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), platform.UnfulfilledOrders)
	assert.True(t, decimal.RequireFromString("103").Equal(platform.RevenueImpact),
		"impact %s", platform.RevenueImpact)
}

func (suite *dashboardServiceSuite) deleteAll() {
	err := suite.db.Exec("TRUNCATE TABLE order_items, orders, items, users CASCADE").Error
	suite.NoError(err)
}

func (suite *dashboardServiceSuite) createMerchant() *models.User {
	user := randomMerchant()
	suite.NoError(suite.db.Create(user).Error)
	return user
}

func (suite *dashboardServiceSuite) createItem(merchant *models.User) *models.Item {
	item, validationErrs, err := suite.items.Create(actingAs(merchant), validItemFields())
	suite.NoError(err)
	suite.Empty(validationErrs)
	return item
}

func (suite *dashboardServiceSuite) placeOrderLine(item *models.Item, qty int, price string, fulfillment models.FulfillmentStatus, status models.OrderStatus) {
	buyer := suite.createMerchant()

	order := &models.Order{
		BuyerID: buyer.ID,
		Status:  status,
	}
	suite.NoError(suite.db.Create(order).Error)

	line := &models.OrderItem{
		OrderID:     order.ID,
		ItemID:      item.ID,
		Quantity:    qty,
		Price:       decimal.RequireFromString(price),
		Fulfillment: fulfillment,
	}
	suite.NoError(suite.db.Create(line).Error)
}
