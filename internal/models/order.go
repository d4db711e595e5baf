// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	BaseModel
	BuyerID uuid.UUID   `json:"buyer_id" gorm:"type:uuid;not null;index"`
	Status  OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Relationships
	Buyer      User        `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	OrderItems []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem links an item to an order with the quantity and unit price at the
// time of purchase. This module only ever reads order items; placing and
// fulfilling orders belongs to the storefront.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID         `json:"order_id" gorm:"type:uuid;not null;index"`
	ItemID      uuid.UUID         `json:"item_id" gorm:"type:uuid;not null;index"`
	Quantity    int               `json:"quantity" gorm:"not null"`
	Price       decimal.Decimal   `json:"price" gorm:"type:decimal(10,2);not null"`
	Fulfillment FulfillmentStatus `json:"fulfillment" gorm:"type:varchar(20);default:'unfulfilled';index"`

	// Relationships
	Order Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Item  Item  `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}
