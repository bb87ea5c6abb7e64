package handlers

import (
	"strings"

	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	DB *gorm.DB
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{DB: db}
}

// AddCardRequest takes the card number transiently; only the brand and
// the last four digits are stored.
type AddCardRequest struct {
	HolderName  string `json:"holder_name"`
	CardNumber  string `json:"card_number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
}

// GetCards - GET /api/cards
func (h *PaymentHandler) GetCards(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var cards []models.PaymentCard
	if err := h.DB.Where("user_id = ?", userID).Find(&cards).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch cards"})
	}
	return c.JSON(fiber.Map{"data": cards})
}

// AddCard - POST /api/cards
func (h *PaymentHandler) AddCard(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req AddCardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	number := strings.ReplaceAll(req.CardNumber, " ", "")
	if len(number) < 13 || len(number) > 19 || req.HolderName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Holder name and a valid card number are required"})
	}
	if req.ExpiryMonth < 1 || req.ExpiryMonth > 12 || req.ExpiryYear < 2024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expiry date"})
	}

	card := models.PaymentCard{
		UserID:      userID,
		HolderName:  req.HolderName,
		Brand:       cardBrand(number),
		LastFour:    number[len(number)-4:],
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
	}

	if err := h.DB.Create(&card).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not save card"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": card})
}

// DeleteCard - DELETE /api/cards/:id
func (h *PaymentHandler) DeleteCard(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid card id"})
	}

	res := h.DB.Where("user_id = ?", userID).Delete(&models.PaymentCard{}, id)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete card"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Card not found"})
	}
	return c.JSON(fiber.Map{"message": "Card removed"})
}

func cardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "5"):
		return "mastercard"
	case strings.HasPrefix(number, "3"):
		return "amex"
	default:
		return "card"
	}
}
