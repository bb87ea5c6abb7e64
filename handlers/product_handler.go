package handlers

import (
	"qbuy_backend/internal/checkout"
	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB *gorm.DB

	// RadiusKm bounds the nearby-store offer search.
	RadiusKm float64
}

func NewProductHandler(db *gorm.DB, radiusKm float64) *ProductHandler {
	return &ProductHandler{DB: db, RadiusKm: radiusKm}
}

// ProductRequest defines the payload for creating or updating a product
type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	ImageURLs   []string `json:"image_urls"`
	TotalStocks int      `json:"total_stocks"`
}

// GetProducts - GET /api/products?category=&q=&store_id=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	query := h.DB.Preload("Store")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ?", "%"+q+"%")
	}
	if storeID := c.QueryInt("store_id"); storeID > 0 {
		query = query.Where("store_id = ?", storeID)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch products"})
	}
	return c.JSON(fiber.Map{"data": products})
}

// GetProduct - GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	var product models.Product
	if err := h.DB.Preload("Store").First(&product, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	return c.JSON(fiber.Map{"data": product})
}

// GetOffers - GET /api/products/:id/offers?latitude=&longitude=&radius_km=&store_id=
// Lists nearby stores carrying the same product by name, each with its
// own price. Falls back to the buyer's saved location when the request
// carries no coordinates; with neither, returns an empty list and a
// warning instead of failing.
func (h *ProductHandler) GetOffers(c *fiber.Ctx) error {
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

	lat := c.QueryFloat("latitude")
	lon := c.QueryFloat("longitude")
	if lat == 0 && lon == 0 {
		var user models.User
		if err := h.DB.First(&user, userID).Error; err == nil {
			lat, lon = user.Latitude, user.Longitude
		}
	}
	if lat == 0 && lon == 0 {
		return c.JSON(fiber.Map{
			"data":    []checkout.StoreOffer{},
			"warning": "No location available; update your location to see nearby stores",
		})
	}

	offers, err := checkout.FindStoresForProduct(h.DB.WithContext(c.Context()), checkout.ProductQuery{
		ProductName:      product.Name,
		Latitude:         lat,
		Longitude:        lon,
		RadiusKm:         c.QueryFloat("radius_km", h.RadiusKm),
		PreferredStoreID: uint(c.QueryInt("store_id")),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch offers"})
	}

	return c.JSON(fiber.Map{"data": offers})
}

// CreateProduct - POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var store models.Store
	if err := h.DB.Where("owner_id = ?", userID).First(&store).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You need a store to list products"})
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if req.Name == "" || req.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name and a positive price are required"})
	}
	if req.TotalStocks < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Stock cannot be negative"})
	}

	product := models.Product{
		StoreID:     store.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURLs:   req.ImageURLs,
		TotalStocks: req.TotalStocks,
	}

	if err := h.DB.Create(&product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create product"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": product})
}

// UpdateProduct - PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	product, status, msg := h.ownedProduct(userID, uint(id))
	if product == nil {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if req.TotalStocks < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Stock cannot be negative"})
	}

	product.Description = req.Description
	product.Category = req.Category
	product.TotalStocks = req.TotalStocks
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.ImageURLs != nil {
		product.ImageURLs = req.ImageURLs
	}

	if err := h.DB.Save(product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update product"})
	}

	return c.JSON(fiber.Map{"data": product})
}

// DeleteProduct - DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	product, status, msg := h.ownedProduct(userID, uint(id))
	if product == nil {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	if err := h.DB.Delete(product).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete product"})
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ownedProduct loads a product and verifies the caller's store owns it.
func (h *ProductHandler) ownedProduct(userID, productID uint) (*models.Product, int, string) {
	var product models.Product
	if err := h.DB.First(&product, productID).Error; err != nil {
		return nil, fiber.StatusNotFound, "Product not found"
	}

	var store models.Store
	if err := h.DB.Where("owner_id = ?", userID).First(&store).Error; err != nil {
		return nil, fiber.StatusForbidden, "You need a store to manage products"
	}
	if product.StoreID != store.ID {
		return nil, fiber.StatusForbidden, "You do not own this product"
	}
	return &product, 0, ""
}
