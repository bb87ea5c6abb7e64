package handlers

import (
	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CartHandler struct {
	DB *gorm.DB
}

func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{DB: db}
}

// AddToCartRequest defines the payload for adding a product to the cart.
// StoreID may differ from the product's home store when the buyer picked
// an alternative offer from the nearby-store list.
type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
	StoreID   uint `json:"store_id"`
}

// GetCart - GET /api/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var items []models.CartItem
	if err := h.DB.Where("user_id = ?", userID).Order("created_at").Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cart"})
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddToCart - POST /api/cart
// Price and image are snapshotted from the product at add time. Adding
// the same product again bumps the quantity instead of duplicating the
// line.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}

	storeID := req.StoreID
	if storeID == 0 {
		storeID = product.StoreID
	}

	var item models.CartItem
	err := h.DB.Where("user_id = ? AND product_id = ? AND store_id = ?", userID, req.ProductID, storeID).
		First(&item).Error
	if err == nil {
		item.Quantity += req.Quantity
		if err := h.DB.Save(&item).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update cart"})
		}
		return c.JSON(fiber.Map{"data": item})
	}

	imageURL := ""
	if len(product.ImageURLs) > 0 {
		imageURL = product.ImageURLs[0]
	}

	item = models.CartItem{
		UserID:      userID,
		ProductID:   product.ID,
		StoreID:     storeID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    req.Quantity,
		ImageURL:    imageURL,
	}

	if err := h.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not add to cart"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": item})
}

// UpdateCartItem - PUT /api/cart/:id
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid cart item id"})
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil || req.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantity must be positive"})
	}

	res := h.DB.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("quantity", req.Quantity)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update cart"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cart item not found"})
	}

	var item models.CartItem
	h.DB.First(&item, id)
	return c.JSON(fiber.Map{"data": item})
}

// RemoveCartItem - DELETE /api/cart/:id
func (h *CartHandler) RemoveCartItem(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid cart item id"})
	}

	res := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}, id)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not remove cart item"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Cart item not found"})
	}
	return c.JSON(fiber.Map{"message": "Item removed"})
}
