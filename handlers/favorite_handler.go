package handlers

import (
	"errors"

	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FavoriteHandler struct {
	DB *gorm.DB
}

func NewFavoriteHandler(db *gorm.DB) *FavoriteHandler {
	return &FavoriteHandler{DB: db}
}

// GetFavorites - GET /api/favorites
func (h *FavoriteHandler) GetFavorites(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var favorites []models.Favorite
	err := h.DB.Preload("Product").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&favorites).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch favorites"})
	}
	return c.JSON(fiber.Map{"data": favorites})
}

// ToggleFavorite - POST /api/products/:id/favorite
// Saves the product, or removes it when already saved.
func (h *FavoriteHandler) ToggleFavorite(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}

	var existing models.Favorite
	err = h.DB.Where("user_id = ? AND product_id = ?", userID, id).First(&existing).Error
	if err == nil {
		if err := h.DB.Delete(&existing).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update favorites"})
		}
		return c.JSON(fiber.Map{"message": "Removed from favorites", "saved": false})
	}

	favorite := models.Favorite{UserID: userID, ProductID: uint(id)}
	if err := h.DB.Create(&favorite).Error; err != nil {
		// A concurrent toggle already saved it; that is the desired state.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(fiber.Map{"message": "Added to favorites", "saved": true})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update favorites"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Added to favorites", "saved": true})
}
