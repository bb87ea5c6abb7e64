package checkout

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"qbuy_backend/internal/outbox"
	"qbuy_backend/models"

	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// BuyerContext identifies the buyer explicitly so the core never reads
// ambient auth state.
type BuyerContext struct {
	UserID uint
}

// CheckoutDetails carries the buyer-entered checkout form plus pricing
// inputs resolved by the caller.
type CheckoutDetails struct {
	CustomerName string
	Address      string
	City         string
	State        string
	ZipCode      string
	Phone        string
	Email        string // optional

	DeliveryOption string // pick, home
	PaymentMethod  string // cash, card
	PaymentCardID  *uint

	PromoCode string

	// DeliveryCost is charged per order for home delivery.
	DeliveryCost float64

	// IdempotencyKey makes a retried commit return the original order
	// instead of decrementing stock again. Optional.
	IdempotencyKey string
}

type orderPlacedEvent struct {
	OrderID     uint    `json:"order_id"`
	UserID      uint    `json:"user_id"`
	StoreID     uint    `json:"store_id"`
	TotalAmount float64 `json:"total_amount"`
	Items       int     `json:"items"`
}

// PlaceOrder commits one order intent: it validates the buyer details,
// conditionally decrements stock, creates the order with its items,
// deletes the committed cart lines and queues the placement event — all
// in a single transaction. Any failure rolls the whole commit back, so an
// order never exists without its stock decrement.
func PlaceOrder(db *gorm.DB, buyer BuyerContext, intent OrderIntent, details CheckoutDetails) (*models.Order, error) {
	if len(intent.Lines) == 0 {
		return nil, ErrEmptySelection
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	if details.PaymentMethod == "card" {
		if details.PaymentCardID == nil {
			return nil, ErrCardRequired
		}
		var card models.PaymentCard
		err := db.Where("id = ? AND user_id = ?", *details.PaymentCardID, buyer.UserID).First(&card).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardRequired
		} else if err != nil {
			return nil, err
		}
	}

	discountRate, err := promoDiscount(details.PromoCode)
	if err != nil {
		return nil, err
	}

	idemKey := perIntentKey(details.IdempotencyKey, intent.StoreID)
	if idemKey != nil {
		if existing, err := findByIdempotencyKey(db, *idemKey); err == nil {
			return existing, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	subtotal := intent.Subtotal()
	discount := subtotal * discountRate
	deliveryCost := 0.0
	if details.DeliveryOption == "home" {
		deliveryCost = details.DeliveryCost
	}

	order := models.Order{
		UserID:         buyer.UserID,
		StoreID:        intent.StoreID,
		Status:         models.OrderStatusPlaced,
		CustomerName:   details.CustomerName,
		Address:        details.Address,
		City:           details.City,
		State:          details.State,
		ZipCode:        details.ZipCode,
		Phone:          details.Phone,
		Email:          details.Email,
		DeliveryOption: details.DeliveryOption,
		PaymentMethod:  details.PaymentMethod,
		PaymentCardID:  details.PaymentCardID,
		PromoCode:      details.PromoCode,
		Subtotal:       subtotal,
		Discount:       discount,
		DeliveryCost:   deliveryCost,
		TotalAmount:    subtotal - discount + deliveryCost,
		PlacedAt:       time.Now(),
		HasReviewed:    false,
		IdempotencyKey: idemKey,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		// Conditional decrement: fails the whole commit when any line is
		// oversubscribed, keeping total_stocks >= 0 under concurrent buyers.
		for _, line := range intent.Lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND total_stocks >= ?", line.ProductID, line.Quantity).
				UpdateColumn("total_stocks", gorm.Expr("total_stocks - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var product models.Product
				if err := tx.Select("id", "name").First(&product, line.ProductID).Error; errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Entity: "product", ID: line.ProductID}
				}
				return &OutOfStockError{ProductID: line.ProductID, ProductName: line.ProductName}
			}

			order.Items = append(order.Items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				UnitPrice:   line.Price,
				Quantity:    line.Quantity,
				ImageURL:    line.ImageURL,
			})
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		lineIDs := make([]uint, 0, len(intent.Lines))
		for _, line := range intent.Lines {
			lineIDs = append(lineIDs, line.ID)
		}
		if err := tx.Where("user_id = ?", buyer.UserID).Delete(&models.CartItem{}, lineIDs).Error; err != nil {
			return err
		}

		return outbox.Insert(tx, outbox.TopicOrderPlaced, orderKey(order.ID), orderPlacedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			StoreID:     order.StoreID,
			TotalAmount: order.TotalAmount,
			Items:       len(order.Items),
		})
	})

	if txErr != nil {
		// A concurrent retry with the same key lost the unique-index race;
		// the order it created is the one to return.
		if idemKey != nil && isDuplicateKey(txErr) {
			if existing, err := findByIdempotencyKey(db, *idemKey); err == nil {
				return existing, nil
			}
		}
		return nil, txErr
	}

	return &order, nil
}

func validateDetails(d CheckoutDetails) error {
	required := []struct {
		field, value string
	}{
		{"customer_name", d.CustomerName},
		{"address", d.Address},
		{"city", d.City},
		{"state", d.State},
		{"zip_code", d.ZipCode},
		{"phone", d.Phone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: r.field + " is required"}
		}
	}
	if d.Email != "" && !emailPattern.MatchString(d.Email) {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	switch d.DeliveryOption {
	case "pick", "home":
	default:
		return &ValidationError{Field: "delivery_option", Message: "delivery option must be pick or home"}
	}
	switch d.PaymentMethod {
	case "cash", "card":
	default:
		return &ValidationError{Field: "payment_method", Message: "payment method must be cash or card"}
	}
	return nil
}

func promoDiscount(code string) (float64, error) {
	switch code {
	case "":
		return 0, nil
	case "DISCOUNT10":
		return 0.10, nil
	case "DISCOUNT20":
		return 0.20, nil
	default:
		return 0, ErrInvalidPromo
	}
}

// perIntentKey scopes the client token to the store so a multi-store
// checkout yields one unique key per order.
func perIntentKey(key string, storeID uint) *string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	scoped := key + ":" + strconv.FormatUint(uint64(storeID), 10)
	return &scoped
}

func findByIdempotencyKey(db *gorm.DB, key string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items").Where("idempotency_key = ?", key).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

func orderKey(id uint) string {
	return "order-" + strconv.FormatUint(uint64(id), 10)
}
