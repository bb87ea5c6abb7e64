package checkout

import (
	"errors"
	"time"

	"qbuy_backend/internal/outbox"
	"qbuy_backend/models"

	"gorm.io/gorm"
)

// Cancellation is allowed from these states while the window is open.
var cancellableStatuses = []string{models.OrderStatusPlaced, models.OrderStatusOnProgress}

type statusEvent struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
	Actor   string `json:"actor"`
}

type reviewEvent struct {
	ReviewID  uint `json:"review_id"`
	OrderID   uint `json:"order_id"`
	ProductID uint `json:"product_id"`
	StoreID   uint `json:"store_id"`
	Rating    int  `json:"rating"`
}

// CancelOrder cancels an order on the buyer's behalf. The window check on
// the loaded row is only advisory; the guarded update re-verifies status
// and placement time so a stale client cannot cancel past the window or
// resurrect a terminal order.
func CancelOrder(db *gorm.DB, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	} else if err != nil {
		return nil, err
	}

	if order.IsTerminal() || time.Now().After(order.CancellableUntil()) {
		return nil, ErrNotCancellable
	}

	cutoff := time.Now().Add(-models.CancelWindow)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND user_id = ? AND status IN ? AND placed_at > ?",
				orderID, userID, cancellableStatuses, cutoff).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotCancellable
		}
		return outbox.Insert(tx, outbox.TopicOrderCancelled, orderKey(orderID), statusEvent{
			OrderID: orderID,
			Status:  models.OrderStatusCancelled,
			Actor:   "buyer",
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	order.Status = models.OrderStatusCancelled
	return &order, nil
}

// AcceptOrder moves a placed order into progress on the seller's behalf
// and stamps the shipping date.
func AcceptOrder(db *gorm.DB, storeID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Where("id = ? AND store_id = ?", orderID, storeID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	} else if err != nil {
		return nil, err
	}

	now := time.Now()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND store_id = ? AND status = ?", orderID, storeID, models.OrderStatusPlaced).
			Updates(map[string]any{
				"status":        models.OrderStatusOnProgress,
				"shipping_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotAcceptable
		}
		return outbox.Insert(tx, outbox.TopicOrderAccepted, orderKey(orderID), statusEvent{
			OrderID: orderID,
			Status:  models.OrderStatusOnProgress,
			Actor:   "seller",
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	order.Status = models.OrderStatusOnProgress
	order.ShippingDate = &now
	return &order, nil
}

// SellerCancelOrder cancels a not-yet-shipped order on the seller's
// behalf, subject to the same window as the buyer.
func SellerCancelOrder(db *gorm.DB, storeID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Where("id = ? AND store_id = ?", orderID, storeID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	} else if err != nil {
		return nil, err
	}

	if order.IsTerminal() || time.Now().After(order.CancellableUntil()) {
		return nil, ErrNotCancellable
	}

	cutoff := time.Now().Add(-models.CancelWindow)
	txErr := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND store_id = ? AND status IN ? AND placed_at > ?",
				orderID, storeID, cancellableStatuses, cutoff).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotCancellable
		}
		return outbox.Insert(tx, outbox.TopicOrderCancelled, orderKey(orderID), statusEvent{
			OrderID: orderID,
			Status:  models.OrderStatusCancelled,
			Actor:   "seller",
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	order.Status = models.OrderStatusCancelled
	return &order, nil
}

// ConfirmDelivery marks an in-progress order completed on the buyer's
// behalf and stamps the delivery date. Completion opens the review window.
func ConfirmDelivery(db *gorm.DB, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	} else if err != nil {
		return nil, err
	}

	now := time.Now()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND user_id = ? AND status = ?", orderID, userID, models.OrderStatusOnProgress).
			Updates(map[string]any{
				"status":        models.OrderStatusCompleted,
				"delivery_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotCompletable
		}
		return outbox.Insert(tx, outbox.TopicOrderCompleted, orderKey(orderID), statusEvent{
			OrderID: orderID,
			Status:  models.OrderStatusCompleted,
			Actor:   "buyer",
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	order.Status = models.OrderStatusCompleted
	order.DeliveryDate = &now
	return &order, nil
}

// ReviewInput is the buyer-submitted review body.
type ReviewInput struct {
	Rating    int
	Text      string
	ImageURLs []string
}

// SubmitReview records the single review allowed for a completed order.
// The review insert and the HasReviewed flip share one transaction, and
// the unique order index catches the double-submit race.
func SubmitReview(db *gorm.DB, userID, orderID uint, input ReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}

	var order models.Order
	err := db.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	} else if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusCompleted {
		return nil, ErrNotReviewable
	}
	if order.HasReviewed {
		return nil, ErrAlreadyReviewed
	}

	productID := uint(0)
	if len(order.Items) > 0 {
		productID = order.Items[0].ProductID
	}

	review := models.Review{
		OrderID:   orderID,
		ProductID: productID,
		StoreID:   order.StoreID,
		UserID:    userID,
		Rating:    input.Rating,
		Text:      input.Text,
		ImageURLs: input.ImageURLs,
	}

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND has_reviewed = ?", orderID, false).
			Update("has_reviewed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}
		return outbox.Insert(tx, outbox.TopicReviewCreated, orderKey(orderID), reviewEvent{
			ReviewID:  review.ID,
			OrderID:   orderID,
			ProductID: productID,
			StoreID:   order.StoreID,
			Rating:    input.Rating,
		})
	})
	if txErr != nil {
		if isDuplicateKey(txErr) {
			return nil, ErrAlreadyReviewed
		}
		return nil, txErr
	}

	return &review, nil
}
