package models

import (
	"github.com/google/uuid"
)

// Order statuses. Orders are created pending and move to paid exactly once
// when either confirmation path (redirect or webhook) verifies the payment.
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusFailed     = "failed"
)

type Order struct {
	BaseModel
	OrderNumber        string      `gorm:"uniqueIndex" json:"order_number"`
	CustomerEmail      string      `json:"customer_email"`
	CustomerName       string      `json:"customer_name"`
	ShippingStreet     string      `json:"shipping_street"`
	ShippingCity       string      `json:"shipping_city"`
	ShippingState      string      `json:"shipping_state"`
	ShippingCountry    string      `json:"shipping_country"`
	ShippingPostalCode string      `json:"shipping_postal_code"`
	Subtotal           float64     `json:"subtotal"`
	Shipping           float64     `json:"shipping"`
	Total              float64     `json:"total"`
	Status             string      `json:"status"`
	PaymentID          string      `json:"payment_id"`
	Items              []OrderItem `json:"items,omitempty"`
}

// OrderItem is a point-in-time snapshot of the purchased product, so order
// history survives later product edits or deletion.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	UnitPrice   float64    `json:"unit_price"`
	Quantity    int        `json:"quantity"`
	Size        string     `json:"size"`
	Color       string     `json:"color"`
	Image       string     `json:"image"`
}
