package handlers

import (
	"errors"

	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StoreHandler struct {
	DB *gorm.DB
}

func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return &StoreHandler{DB: db}
}

// StoreRequest defines the payload for creating or updating a store
type StoreRequest struct {
	Name      string  `json:"name"`
	Location  string  `json:"location"`
	AboutUs   string  `json:"about_us"`
	ImageURL  string  `json:"image_url"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateStore - POST /api/stores
// One store per user; the unique owner index backs up the pre-check.
func (h *StoreHandler) CreateStore(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if user.Membership != "premium" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "A premium membership is required to open a store"})
	}

	var req StoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Store name is required"})
	}

	store := models.Store{
		OwnerID:   userID,
		Name:      req.Name,
		Location:  req.Location,
		AboutUs:   req.AboutUs,
		ImageURL:  req.ImageURL,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	if err := h.DB.Create(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You already have a store"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create store"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": store})
}

// GetStore - GET /api/stores/:id
func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid store id"})
	}

	var store models.Store
	if err := h.DB.Preload("Products").First(&store, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Store not found"})
	}
	return c.JSON(fiber.Map{"data": store})
}

// GetMyStore - GET /api/stores/me
func (h *StoreHandler) GetMyStore(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var store models.Store
	if err := h.DB.Preload("Products").Where("owner_id = ?", userID).First(&store).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "You do not have a store yet"})
	}
	return c.JSON(fiber.Map{"data": store})
}

// UpdateMyStore - PUT /api/stores/me
func (h *StoreHandler) UpdateMyStore(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var store models.Store
	if err := h.DB.Where("owner_id = ?", userID).First(&store).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "You do not have a store yet"})
	}

	var req StoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	updates := map[string]any{
		"location":  req.Location,
		"about_us":  req.AboutUs,
		"image_url": req.ImageURL,
		"latitude":  req.Latitude,
		"longitude": req.Longitude,
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}

	if err := h.DB.Model(&store).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update store"})
	}

	h.DB.First(&store, store.ID)
	return c.JSON(fiber.Map{"data": store})
}
