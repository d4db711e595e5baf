// internal/services/item_service.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/earl-stephens/little-shop-base/internal/models"
)

var (
	ErrItemNotFound = errors.New("item not found")

	// ErrItemEverOrdered blocks deletion of an item that has appeared in at
	// least one order line, in any fulfillment status, at any time.
	ErrItemEverOrdered = errors.New("item has order history")
)

// ActingContext carries who is performing an operation and which merchant's
// catalog it targets. It is resolved once at the request boundary: a merchant
// always targets itself, an admin targets the merchant named in the request.
// Services receive it as a plain value and never consult session state.
type ActingContext struct {
	ActingPrincipalID uuid.UUID
	TargetMerchantID  uuid.UUID
}

// ItemFields is the form-shaped input for create and update. Price and
// inventory arrive as strings so a blank submission and a non-numeric one
// stay distinguishable.
type ItemFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Inventory   string `json:"inventory"`
}

// ItemListing is the owner's view of their catalog: every item in storage
// order, split into the items still carrying the placeholder image and the
// ones with an image of their own. The two partitions are disjoint and
// together cover Items exactly.
type ItemListing struct {
	Items       []models.Item `json:"items"`
	Placeholder []models.Item `json:"placeholder_items"`
	Custom      []models.Item `json:"custom_image_items"`
}

// ValidateItemFields collects every failing field check and returns all
// messages together. A blank price or inventory fails both its presence and
// numeric check, so a fully blank submission yields exactly six messages.
func ValidateItemFields(fields ItemFields) []string {
	var errs []string

	if strings.TrimSpace(fields.Name) == "" {
		errs = append(errs, "Name can't be blank")
	}
	if strings.TrimSpace(fields.Description) == "" {
		errs = append(errs, "Description can't be blank")
	}

	price := strings.TrimSpace(fields.Price)
	if price == "" {
		errs = append(errs, "Price can't be blank", "Price is not a number")
	} else if _, err := decimal.NewFromString(price); err != nil {
		errs = append(errs, "Price is not a number")
	}

	inventory := strings.TrimSpace(fields.Inventory)
	if inventory == "" {
		errs = append(errs, "Inventory can't be blank", "Inventory is not a number")
	} else if _, err := strconv.Atoi(inventory); err != nil {
		errs = append(errs, "Inventory is not a number")
	}

	return errs
}

type ItemService struct {
	db *gorm.DB
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db}
}

// Create validates the submitted fields and persists a new item for the
// target merchant. A blank image falls back to the placeholder and the item
// always starts active. On validation failure nothing is persisted and the
// collected messages are returned.
func (s *ItemService) Create(actx ActingContext, fields ItemFields) (*models.Item, []string, error) {
	if errs := ValidateItemFields(fields); len(errs) > 0 {
		return nil, errs, nil
	}

	price, inventory := parseItemFields(fields)

	item := &models.Item{
		UserID:      actx.TargetMerchantID,
		Name:        fields.Name,
		Description: fields.Description,
		Image:       imageOrPlaceholder(fields.Image),
		Price:       price,
		Inventory:   inventory,
		Active:      true,
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil, nil
}

// Update replaces every mutable field of an existing item. Validation runs
// against the submitted field set before anything touches the stored row, so
// a rejected update leaves the item exactly as it was. Like create, it forces
// the item active; enable/disable is a separate operation.
func (s *ItemService) Update(itemID uuid.UUID, fields ItemFields) (*models.Item, []string, error) {
	item, err := s.Get(itemID)
	if err != nil {
		return nil, nil, err
	}

	if errs := ValidateItemFields(fields); len(errs) > 0 {
		return nil, errs, nil
	}

	price, inventory := parseItemFields(fields)

	updates := map[string]interface{}{
		"name":        fields.Name,
		"description": fields.Description,
		"image":       imageOrPlaceholder(fields.Image),
		"price":       price,
		"inventory":   inventory,
		"active":      true,
	}

	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update item: %w", err)
	}

	return item, nil, nil
}

// SetActive flips only the active flag, bypassing field validation.
// Setting the flag to its current value is a no-op.
func (s *ItemService) SetActive(itemID uuid.UUID, active bool) (*models.Item, error) {
	item, err := s.Get(itemID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(item).Update("active", active).Error; err != nil {
		return nil, fmt.Errorf("failed to update active flag: %w", err)
	}

	return item, nil
}

// HasOrderHistory reports whether the item has ever appeared in an order
// line, regardless of the line's fulfillment status or the order's fate.
// Soft-deleted lines still count as history.
func (s *ItemService) HasOrderHistory(itemID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.Unscoped().Model(&models.OrderItem{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check order history: %w", err)
	}
	return count > 0, nil
}

// DeleteIfUnordered removes the item permanently when it has no order
// history, or returns ErrItemEverOrdered (with the item untouched) when it
// does. The history check and the delete are two steps; an order placed in
// between can slip through, which the domain accepts.
func (s *ItemService) DeleteIfUnordered(itemID uuid.UUID) (*models.Item, error) {
	item, err := s.Get(itemID)
	if err != nil {
		return nil, err
	}

	ordered, err := s.HasOrderHistory(itemID)
	if err != nil {
		return nil, err
	}
	if ordered {
		return item, ErrItemEverOrdered
	}

	// Hard delete so the item never resurfaces in listings.
	if err := s.db.Unscoped().Delete(item).Error; err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}

	return item, nil
}

func (s *ItemService) Get(itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &item, nil
}

// ListForOwner returns every item the merchant owns, in storage order,
// together with the placeholder-image audit partitions.
func (s *ItemService) ListForOwner(merchantID uuid.UUID) (*ItemListing, error) {
	var items []models.Item
	if err := s.db.Where("user_id = ?", merchantID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	placeholder, custom := lo.FilterReject(items, func(item models.Item, _ int) bool {
		return item.HasPlaceholderImage()
	})

	return &ItemListing{
		Items:       items,
		Placeholder: placeholder,
		Custom:      custom,
	}, nil
}

// parseItemFields assumes the fields already passed validation.
func parseItemFields(fields ItemFields) (decimal.Decimal, int) {
	price, _ := decimal.NewFromString(strings.TrimSpace(fields.Price))
	inventory, _ := strconv.Atoi(strings.TrimSpace(fields.Inventory))
	return price, inventory
}

func imageOrPlaceholder(image string) string {
	if strings.TrimSpace(image) == "" {
		return models.PlaceholderImage
	}
	return image
}
