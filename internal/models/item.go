// internal/models/item.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceholderImage is substituted when a merchant submits an item without an
// image of its own.
const PlaceholderImage = "https://picsum.photos/200/300/?image=524"

type Item struct {
	BaseModel
	UserID      uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Image       string          `json:"image" gorm:"size:2048;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Inventory   int             `json:"inventory" gorm:"not null"`
	Active      bool            `json:"active" gorm:"default:true"`

	// Relationships
	User       User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	OrderItems []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:ItemID"`
}

// HasPlaceholderImage reports whether the item still carries the default image.
func (i *Item) HasPlaceholderImage() bool {
	return i.Image == PlaceholderImage
}
