package handlers

import (
	"errors"

	"qbuy_backend/internal/checkout"
	"qbuy_backend/internal/metrics"
	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CheckoutHandler struct {
	DB      *gorm.DB
	Metrics *metrics.ServerMetrics

	// DeliveryCost is the flat home-delivery charge per order.
	DeliveryCost float64
}

func NewCheckoutHandler(db *gorm.DB, m *metrics.ServerMetrics, deliveryCost float64) *CheckoutHandler {
	return &CheckoutHandler{DB: db, Metrics: m, DeliveryCost: deliveryCost}
}

// CheckoutRequest defines the payload for committing selected cart lines.
type CheckoutRequest struct {
	CartItemIDs []uint `json:"cart_item_ids"`

	CustomerName string `json:"customer_name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`

	DeliveryOption string `json:"delivery_option"`
	PaymentMethod  string `json:"payment_method"`
	PaymentCardID  *uint  `json:"payment_card_id"`
	PromoCode      string `json:"promo_code"`
}

// StoreResult reports the outcome for one store's order.
type StoreResult struct {
	StoreID uint          `json:"store_id"`
	Order   *models.Order `json:"order,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Checkout - POST /api/checkout
// Commits the selected cart lines as one order per store. Each store's
// order is atomic on its own; a stock conflict in one store does not
// roll back the others. Retries should send the same Idempotency-Key
// header to avoid double commits.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if len(req.CartItemIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": checkout.ErrEmptySelection.Error()})
	}

	idemKey := c.Get("Idempotency-Key")

	var lines []models.CartItem
	err := h.DB.Where("user_id = ? AND id IN ?", userID, req.CartItemIDs).
		Order("created_at").Find(&lines).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load cart"})
	}
	if len(lines) == 0 {
		// A retry of an already-committed checkout finds its cart lines
		// gone; replay the original result instead of failing.
		if idemKey != "" {
			if results, ok := h.replayByKey(userID, idemKey); ok {
				return c.Status(fiber.StatusCreated).JSON(fiber.Map{
					"orders_placed": len(results),
					"results":       results,
				})
			}
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": checkout.ErrEmptySelection.Error()})
	}

	intents, err := checkout.GroupByStore(lines)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	details := checkout.CheckoutDetails{
		CustomerName:   req.CustomerName,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Phone:          req.Phone,
		Email:          req.Email,
		DeliveryOption: req.DeliveryOption,
		PaymentMethod:  req.PaymentMethod,
		PaymentCardID:  req.PaymentCardID,
		PromoCode:      req.PromoCode,
		DeliveryCost:   h.DeliveryCost,
		IdempotencyKey: idemKey,
	}

	db := h.DB.WithContext(c.Context())
	buyer := checkout.BuyerContext{UserID: userID}

	results := make([]StoreResult, 0, len(intents))
	placed := 0
	for _, intent := range intents {
		order, err := checkout.PlaceOrder(db, buyer, intent, details)
		if err != nil {
			// Store-independent failures abort the whole request.
			if status, ok := requestLevelStatus(err); ok {
				return c.Status(status).JSON(fiber.Map{"error": err.Error()})
			}

			var oos *checkout.OutOfStockError
			if errors.As(err, &oos) {
				h.Metrics.StockConflicts.Inc()
			} else {
				var nf *checkout.NotFoundError
				if !errors.As(err, &nf) {
					logrus.Errorf("checkout failed for store %d: %v", intent.StoreID, err)
				}
			}
			results = append(results, StoreResult{StoreID: intent.StoreID, Error: err.Error()})
			continue
		}

		h.Metrics.OrdersPlaced.Inc()
		placed++
		results = append(results, StoreResult{StoreID: intent.StoreID, Order: order})
	}

	status := fiber.StatusCreated
	if placed == 0 {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"orders_placed": placed,
		"results":       results,
	})
}

// replayByKey finds the orders a previous request with this key already
// committed. Committer keys are scoped per store as key:storeID.
func (h *CheckoutHandler) replayByKey(userID uint, key string) ([]StoreResult, bool) {
	var orders []models.Order
	err := h.DB.Preload("Items").
		Where("user_id = ? AND idempotency_key LIKE ?", userID, key+":%").
		Find(&orders).Error
	if err != nil || len(orders) == 0 {
		return nil, false
	}

	results := make([]StoreResult, 0, len(orders))
	for i := range orders {
		results = append(results, StoreResult{StoreID: orders[i].StoreID, Order: &orders[i]})
	}
	return results, true
}

// requestLevelStatus maps failures that apply to the whole checkout, not
// to a single store.
func requestLevelStatus(err error) (int, bool) {
	var ve *checkout.ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, true
	case errors.Is(err, checkout.ErrCardRequired):
		return fiber.StatusUnprocessableEntity, true
	case errors.Is(err, checkout.ErrInvalidPromo):
		return fiber.StatusBadRequest, true
	}
	return 0, false
}
