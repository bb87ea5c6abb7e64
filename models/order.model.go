package models

import (
	"time"

	"gorm.io/gorm"
)

// Order status values, kept as the client displays them.
const (
	OrderStatusPlaced     = "Order Placed"
	OrderStatusOnProgress = "On Progress"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

// CancelWindow is how long after placement a buyer or seller may still
// cancel an order.
const CancelWindow = 24 * time.Hour

// Order is one per-store checkout commit. Completed and Cancelled are
// terminal; after that only HasReviewed may change, exactly once.
type Order struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	UserID  uint `gorm:"index;not null" json:"user_id"`
	StoreID uint `gorm:"index;not null" json:"store_id"`

	Status string `gorm:"size:20;not null;default:'Order Placed'" json:"status"`

	// Customer contact, captured at checkout
	CustomerName string `gorm:"size:100;not null" json:"customer_name"`
	Address      string `gorm:"size:255;not null" json:"address"`
	City         string `gorm:"size:100;not null" json:"city"`
	State        string `gorm:"size:100;not null" json:"state"`
	ZipCode      string `gorm:"size:20;not null" json:"zip_code"`
	Phone        string `gorm:"size:20;not null" json:"phone"`
	Email        string `gorm:"size:100" json:"email"`

	DeliveryOption string `gorm:"size:20;not null;default:'pick'" json:"delivery_option"` // pick, home
	PaymentMethod  string `gorm:"size:20;not null;default:'cash'" json:"payment_method"`  // cash, card
	PaymentCardID  *uint  `json:"payment_card_id,omitempty"`

	PromoCode    string  `gorm:"size:50" json:"promo_code,omitempty"`
	Subtotal     float64 `gorm:"not null" json:"subtotal"`
	Discount     float64 `gorm:"not null;default:0" json:"discount"`
	DeliveryCost float64 `gorm:"not null;default:0" json:"delivery_cost"`
	TotalAmount  float64 `gorm:"not null" json:"total_amount"`

	PlacedAt     time.Time  `gorm:"not null" json:"placed_at"`
	ShippingDate *time.Time `json:"shipping_date,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`

	HasReviewed bool `gorm:"default:false" json:"has_reviewed"`

	// Client-generated token that makes checkout retries safe. Unique so a
	// replayed commit finds the existing order instead of decrementing
	// stock twice.
	IdempotencyKey *string `gorm:"uniqueIndex;size:100" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	// Relations
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Store Store       `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

// OrderItem snapshots one committed cart line.
type OrderItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	OrderID   uint `gorm:"index;not null" json:"order_id"`
	ProductID uint `gorm:"index;not null" json:"product_id"`

	ProductName string  `gorm:"size:255" json:"product_name"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	ImageURL    string  `json:"image_url"`
}

func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// CancellableUntil is the end of the cancellation window.
func (o *Order) CancellableUntil() time.Time {
	return o.PlacedAt.Add(CancelWindow)
}
