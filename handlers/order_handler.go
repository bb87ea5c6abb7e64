package handlers

import (
	"errors"

	"qbuy_backend/internal/checkout"
	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrderHandler struct {
	DB *gorm.DB
}

func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{DB: db}
}

// GetMyOrders - GET /api/orders?status=
func (h *OrderHandler) GetMyOrders(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	query := h.DB.Preload("Items").Preload("Store").Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("placed_at DESC").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch orders"})
	}
	return c.JSON(fiber.Map{"data": orders})
}

// GetOrder - GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	var order models.Order
	err = h.DB.Preload("Items").Preload("Store").
		Where("id = ? AND user_id = ?", id, userID).First(&order).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return c.JSON(fiber.Map{"data": order})
}

// CancelOrder - POST /api/orders/:id/cancel
// Buyers may cancel until the order is accepted or the 24 hour window
// closes, whichever comes first.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	order, err := checkout.CancelOrder(h.DB.WithContext(c.Context()), userID, uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(fiber.Map{"data": order})
}

// ConfirmDelivery - POST /api/orders/:id/confirm
func (h *OrderHandler) ConfirmDelivery(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	order, err := checkout.ConfirmDelivery(h.DB.WithContext(c.Context()), userID, uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(fiber.Map{"data": order})
}

// GetStoreOrders - GET /api/stores/me/orders?status=
func (h *OrderHandler) GetStoreOrders(c *fiber.Ctx) error {
	store, ok := h.callerStore(c)
	if !ok {
		return nil
	}

	query := h.DB.Preload("Items").Where("store_id = ?", store.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("placed_at DESC").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch orders"})
	}
	return c.JSON(fiber.Map{"data": orders})
}

// AcceptOrder - POST /api/stores/me/orders/:id/accept
func (h *OrderHandler) AcceptOrder(c *fiber.Ctx) error {
	store, ok := h.callerStore(c)
	if !ok {
		return nil
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	order, err := checkout.AcceptOrder(h.DB.WithContext(c.Context()), store.ID, uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(fiber.Map{"data": order})
}

// RejectOrder - POST /api/stores/me/orders/:id/cancel
func (h *OrderHandler) RejectOrder(c *fiber.Ctx) error {
	store, ok := h.callerStore(c)
	if !ok {
		return nil
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	order, err := checkout.SellerCancelOrder(h.DB.WithContext(c.Context()), store.ID, uint(id))
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(fiber.Map{"data": order})
}

// callerStore resolves the caller's store, writing the error response
// itself when there is none.
func (h *OrderHandler) callerStore(c *fiber.Ctx) (*models.Store, bool) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		return nil, false
	}

	var store models.Store
	if err := h.DB.Where("owner_id = ?", userID).First(&store).Error; err != nil {
		c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have a store"})
		return nil, false
	}
	return &store, true
}

func lifecycleError(c *fiber.Ctx, err error) error {
	var nf *checkout.NotFoundError
	switch {
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, checkout.ErrNotCancellable),
		errors.Is(err, checkout.ErrNotAcceptable),
		errors.Is(err, checkout.ErrNotCompletable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update order"})
	}
}
