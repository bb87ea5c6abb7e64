package handlers

import (
	"errors"

	"qbuy_backend/internal/checkout"
	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	DB *gorm.DB
}

func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{DB: db}
}

// ReviewRequest defines the payload for submitting a review
type ReviewRequest struct {
	Rating    int      `json:"rating"`
	Text      string   `json:"text"`
	ImageURLs []string `json:"image_urls"`
}

// SubmitReview - POST /api/orders/:id/review
// One review per order, only after the buyer confirms delivery.
func (h *ReviewHandler) SubmitReview(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	review, err := checkout.SubmitReview(h.DB.WithContext(c.Context()), userID, uint(id), checkout.ReviewInput{
		Rating:    req.Rating,
		Text:      req.Text,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		var ve *checkout.ValidationError
		var nf *checkout.NotFoundError
		switch {
		case errors.As(err, &ve):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.As(err, &nf):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, checkout.ErrAlreadyReviewed), errors.Is(err, checkout.ErrNotReviewable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not submit review"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": review})
}

// GetStoreReviews - GET /api/stores/:id/reviews
func (h *ReviewHandler) GetStoreReviews(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid store id"})
	}

	var reviews []models.Review
	if err := h.DB.Where("store_id = ?", id).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch reviews"})
	}
	return c.JSON(fiber.Map{"data": reviews})
}

// GetProductReviews - GET /api/products/:id/reviews
func (h *ReviewHandler) GetProductReviews(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	var reviews []models.Review
	if err := h.DB.Where("product_id = ?", id).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch reviews"})
	}
	return c.JSON(fiber.Map{"data": reviews})
}
