package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/earl-stephens/little-shop-base/internal/config"
	"github.com/earl-stephens/little-shop-base/internal/database"
	"github.com/earl-stephens/little-shop-base/internal/handlers"
	"github.com/earl-stephens/little-shop-base/internal/middleware"
	"github.com/earl-stephens/little-shop-base/internal/models"
	"github.com/earl-stephens/little-shop-base/internal/services"
	"github.com/earl-stephens/little-shop-base/internal/utils"
)

type apiEnvelope struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Error   *struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

type itemPayload struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Image  string    `json:"image"`
	Active bool      `json:"active"`
}

type itemHandlerSuite struct {
	suite.Suite

	db        *gorm.DB
	container testcontainers.Container
	router    *gin.Engine
	items     *services.ItemService

	merchant      *models.User
	admin         *models.User
	merchantToken string
	adminToken    string
}

// entry point to run the tests in the suite
func TestItemHandlerSuite(t *testing.T) {
	suite.Run(t, new(itemHandlerSuite))
}

// before all tests in the suite
func (suite *itemHandlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.db, err = gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.NoError(err)
	suite.NoError(database.RunMigrations(suite.db))

	suite.items = services.NewItemService(suite.db)
	suite.router = suite.buildRouter()
}

// after all tests in the suite
func (suite *itemHandlerSuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.db != nil {
		if sqlDB, err := suite.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

// before each test
func (suite *itemHandlerSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE order_items, orders, items, users CASCADE").Error
	suite.NoError(err)

	suite.merchant = suite.createUser(models.UserTypeMerchant)
	suite.admin = suite.createUser(models.UserTypeAdmin)

	suite.merchantToken, err = utils.GenerateJWT(
		suite.merchant.ID, suite.merchant.Username, string(suite.merchant.UserType), 1)
	suite.NoError(err)

	suite.adminToken, err = utils.GenerateJWT(
		suite.admin.ID, suite.admin.Username, string(suite.admin.UserType), 1)
	suite.NoError(err)
}

// buildRouter wires the item routes the way the server does, minus rate
// limiting and audit logging which only add noise here.
func (suite *itemHandlerSuite) buildRouter() *gin.Engine {
	cfg := &config.Config{Server: config.ServerConfig{Port: "8080"}}

	storageService, err := services.NewStorageService(cfg)
	suite.NoError(err)

	dashboardService := services.NewDashboardService(suite.db)
	adminService := services.NewAdminService(suite.db)
	itemHandler := handlers.NewItemHandler(suite.items, dashboardService, adminService, storageService)

	r := gin.New()
	v1 := r.Group("/v1")

	dashboard := v1.Group("/dashboard", middleware.AuthRequired(), middleware.MerchantOrAdminRequired())
	items := dashboard.Group("/items")
	{
		items.GET("", itemHandler.ListItems)
		items.GET("/new", itemHandler.NewItem)
		items.POST("", itemHandler.CreateItem)
		items.GET("/:id/edit", itemHandler.EditItem)
		items.PUT("/:id", itemHandler.UpdateItem)
		items.PATCH("/:id/enable", itemHandler.EnableItem)
		items.PATCH("/:id/disable", itemHandler.DisableItem)
		items.DELETE("/:id", itemHandler.DeleteItem)
	}

	admin := v1.Group("/admin", middleware.AuthRequired(), middleware.AdminRequired())
	merchantItems := admin.Group("/merchants/:merchant_id/items")
	{
		merchantItems.GET("", itemHandler.ListItems)
		merchantItems.POST("", itemHandler.CreateItem)
		merchantItems.PUT("/:id", itemHandler.UpdateItem)
		merchantItems.DELETE("/:id", itemHandler.DeleteItem)
	}

	return r
}

func (suite *itemHandlerSuite) TestCreateItem() {
	t := suite.T()

	fields := services.ItemFields{
		Name:        "Banana Stand",
		Description: "There is always money in it",
		Price:       "19.99",
		Inventory:   "12",
	}

	w := suite.request(http.MethodPost, "/v1/dashboard/items", suite.merchantToken, fields)
	require.Equal(t, http.StatusCreated, w.Code)

	env := suite.decode(w)
	assert.Equal(t, "Banana Stand has been added!", suite.message(env))

	item := suite.item(env)
	assert.Equal(t, suite.merchant.ID, item.UserID)
	assert.Equal(t, models.PlaceholderImage, item.Image)
	assert.True(t, item.Active)
}

func (suite *itemHandlerSuite) TestCreateItemValidation() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/v1/dashboard/items", suite.merchantToken, services.ItemFields{})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := suite.decode(w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "6 errors prohibited this item from being saved.", env.Error.Message)
	assert.Equal(t, []string{
		"Name can't be blank",
		"Description can't be blank",
		"Price can't be blank",
		"Price is not a number",
		"Inventory can't be blank",
		"Inventory is not a number",
	}, env.Error.Details)

	// Nothing was persisted
	var count int64
	suite.NoError(suite.db.Model(&models.Item{}).Count(&count).Error)
	assert.Zero(t, count)
}

func (suite *itemHandlerSuite) TestUpdateItem() {
	t := suite.T()
	item := suite.createItem(suite.merchant)

	fields := services.ItemFields{
		Name:        "Frozen Banana",
		Description: "On a stick",
		Price:       "2.50",
		Inventory:   "40",
	}

	w := suite.request(http.MethodPut, "/v1/dashboard/items/"+item.ID.String(), suite.merchantToken, fields)
	require.Equal(t, http.StatusOK, w.Code)

	env := suite.decode(w)
	assert.Equal(t, "Frozen Banana has been updated!", suite.message(env))
}

func (suite *itemHandlerSuite) TestEnableDisableItem() {
	t := suite.T()
	item := suite.createItem(suite.merchant)
	path := "/v1/dashboard/items/" + item.ID.String()

	w := suite.request(http.MethodPatch, path+"/disable", suite.merchantToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, suite.item(suite.decode(w)).Active)

	w = suite.request(http.MethodPatch, path+"/enable", suite.merchantToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, suite.item(suite.decode(w)).Active)
}

func (suite *itemHandlerSuite) TestDeleteItem() {
	t := suite.T()
	item := suite.createItem(suite.merchant)

	w := suite.request(http.MethodDelete, "/v1/dashboard/items/"+item.ID.String(), suite.merchantToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := suite.items.Get(item.ID)
	require.ErrorIs(t, err, services.ErrItemNotFound)
}

func (suite *itemHandlerSuite) TestDeleteItemThwarted() {
	t := suite.T()
	item := suite.createItem(suite.merchant)
	suite.placeOrderLine(item)

	w := suite.request(http.MethodDelete, "/v1/dashboard/items/"+item.ID.String(), suite.merchantToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	env := suite.decode(w)
	require.NotNil(t, env.Error)
	assert.Equal(t, fmt.Sprintf("Attempt to delete %s was thwarted!", item.Name), env.Error.Message)

	// The item survives the attempt
	_, err := suite.items.Get(item.ID)
	require.NoError(t, err)
}

func (suite *itemHandlerSuite) TestListItems() {
	t := suite.T()
	suite.createItem(suite.merchant)
	custom := suite.createItemWithImage(suite.merchant, "https://example.com/banana.jpg")

	w := suite.request(http.MethodGet, "/v1/dashboard/items", suite.merchantToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := suite.decode(w)

	var items, placeholder, customItems []itemPayload
	suite.NoError(json.Unmarshal(env.Data["items"], &items))
	suite.NoError(json.Unmarshal(env.Data["placeholder_items"], &placeholder))
	suite.NoError(json.Unmarshal(env.Data["custom_image_items"], &customItems))

	assert.Len(t, items, 2)
	assert.Len(t, placeholder, 1)
	require.Len(t, customItems, 1)
	assert.Equal(t, custom.ID, customItems[0].ID)

	assert.Contains(t, env.Data, "stats")
}

func (suite *itemHandlerSuite) TestAdminActsOnBehalfOfMerchant() {
	t := suite.T()

	fields := services.ItemFields{
		Name:        "Banana Stand",
		Description: "There is always money in it",
		Price:       "19.99",
		Inventory:   "12",
	}

	path := "/v1/admin/merchants/" + suite.merchant.ID.String() + "/items"
	w := suite.request(http.MethodPost, path, suite.adminToken, fields)
	require.Equal(t, http.StatusCreated, w.Code)

	// The item lands in the merchant's catalog, not the admin's
	item := suite.item(suite.decode(w))
	assert.Equal(t, suite.merchant.ID, item.UserID)

	w = suite.request(http.MethodGet, path, suite.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func (suite *itemHandlerSuite) TestAdminRoutesRejectMerchants() {
	t := suite.T()

	path := "/v1/admin/merchants/" + suite.merchant.ID.String() + "/items"
	w := suite.request(http.MethodGet, path, suite.merchantToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *itemHandlerSuite) TestAdminRouteUnknownMerchant() {
	t := suite.T()

	path := "/v1/admin/merchants/" + gofakeit.UUID() + "/items"
	w := suite.request(http.MethodGet, path, suite.adminToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// An admin id is not a merchant id
	path = "/v1/admin/merchants/" + suite.admin.ID.String() + "/items"
	w = suite.request(http.MethodGet, path, suite.adminToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *itemHandlerSuite) TestAuthRequired() {
	t := suite.T()

	w := suite.request(http.MethodGet, "/v1/dashboard/items", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *itemHandlerSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *itemHandlerSuite) decode(w *httptest.ResponseRecorder) apiEnvelope {
	var env apiEnvelope
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func (suite *itemHandlerSuite) message(env apiEnvelope) string {
	var message string
	suite.NoError(json.Unmarshal(env.Data["message"], &message))
	return message
}

func (suite *itemHandlerSuite) item(env apiEnvelope) itemPayload {
	var item itemPayload
	suite.NoError(json.Unmarshal(env.Data["item"], &item))
	return item
}

func (suite *itemHandlerSuite) createUser(userType models.UserType) *models.User {
	user := &models.User{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		UserType: userType,
		Status:   models.UserStatusActive,
	}
	suite.NoError(user.SetPassword(gofakeit.Password(true, true, true, true, false, 12)))
	suite.NoError(suite.db.Create(user).Error)
	return user
}

func (suite *itemHandlerSuite) createItem(merchant *models.User) *models.Item {
	return suite.createItemWithImage(merchant, "")
}

func (suite *itemHandlerSuite) createItemWithImage(merchant *models.User, image string) *models.Item {
	actx := services.ActingContext{
		ActingPrincipalID: merchant.ID,
		TargetMerchantID:  merchant.ID,
	}
	fields := services.ItemFields{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(8),
		Image:       image,
		Price:       fmt.Sprintf("%.2f", gofakeit.Price(1, 100)),
		Inventory:   strconv.Itoa(gofakeit.Number(1, 50)),
	}

	item, validationErrs, err := suite.items.Create(actx, fields)
	suite.NoError(err)
	suite.Empty(validationErrs)
	return item
}

func (suite *itemHandlerSuite) placeOrderLine(item *models.Item) {
	buyer := suite.createUser(models.UserTypeMerchant)

	order := &models.Order{BuyerID: buyer.ID, Status: models.OrderStatusPending}
	suite.NoError(suite.db.Create(order).Error)

	line := &models.OrderItem{
		OrderID:     order.ID,
		ItemID:      item.ID,
		Quantity:    1,
		Price:       decimal.RequireFromString("3.00"),
		Fulfillment: models.FulfillmentStatusUnfulfilled,
	}
	suite.NoError(suite.db.Create(line).Error)
}

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("little_shop_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	return container, connStr, nil
}
