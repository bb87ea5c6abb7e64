package config

import (
	"errors"

	"qbuy_backend/models"
	"qbuy_backend/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func SeedCategories(db *gorm.DB) {
	categories := []models.Category{
		{Name: "Electronics", Slug: "electronics"},
		{Name: "Fashion", Slug: "fashion"},
		{Name: "Home & Garden", Slug: "home-garden"},
		{Name: "Groceries", Slug: "groceries"},
		{Name: "Sports", Slug: "sports"},
		{Name: "Automotive", Slug: "automotive"},
	}

	for _, category := range categories {
		var existing models.Category
		err := db.Where("slug = ?", category.Slug).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&category).Error; err != nil {
				logrus.Errorf("Failed to seed category %s: %v", category.Name, err)
			}
		}
	}

	logrus.Info("Categories seeded")
}

func SeedUsers(db *gorm.DB) {
	logrus.Info("🌱 Seeding users...")

	password, _ := utils.HashPassword("password123")

	users := []models.User{
		{
			Username: "buyer1",
			Email:    "buyer1@example.com",
			Password: password,
			FullName: "Demo Buyer",
			Role:     "user",
			// Colombo Fort
			Latitude:  6.9271,
			Longitude: 79.8612,
		},
		{
			Username: "seller1",
			Email:    "seller1@example.com",
			Password: password,
			FullName: "Demo Seller",
			Role:     "user",
		},
	}

	for _, user := range users {
		var existingUser models.User
		if err := db.Where("email = ?", user.Email).First(&existingUser).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := db.Create(&user).Error; err != nil {
					logrus.Errorf("Failed to seed user %s: %v", user.Username, err)
				} else {
					logrus.Infof("User seeded: %s (ID: %d)", user.Username, user.ID)
				}
			}
		} else {
			logrus.Infof("User already exists: %s", user.Username)
		}
	}

	logrus.Info("✅ Seeding complete.")
}

func SeedStoresAndProducts(db *gorm.DB) {
	var seller models.User
	if err := db.Where("username = ?", "seller1").First(&seller).Error; err != nil {
		logrus.Warn("No seller user to attach demo store to, skipping store seed")
		return
	}

	store := models.Store{
		OwnerID:  seller.ID,
		Name:     "Pettah Electronics",
		Location: "Main Street, Pettah, Colombo 11",
		AboutUs:  "Family-run electronics shop since 1998.",
		// About 1 km from Colombo Fort
		Latitude:  6.9355,
		Longitude: 79.8500,
	}

	var existing models.Store
	if err := db.Where("owner_id = ?", seller.ID).First(&existing).Error; err == nil {
		logrus.Info("Demo store already exists")
		return
	}

	if err := db.Create(&store).Error; err != nil {
		logrus.Errorf("Failed to seed store: %v", err)
		return
	}

	products := []models.Product{
		{
			StoreID:     store.ID,
			Name:        "Wireless Earbuds",
			Description: "Bluetooth 5.3 earbuds with charging case.",
			Price:       7500,
			Category:    "electronics",
			TotalStocks: 25,
		},
		{
			StoreID:     store.ID,
			Name:        "Portable Fan",
			Description: "Rechargeable USB desk fan.",
			Price:       3200,
			Category:    "electronics",
			TotalStocks: 40,
		},
	}

	if err := db.Create(&products).Error; err != nil {
		logrus.Errorf("Failed to seed products: %v", err)
		return
	}

	logrus.Infof("Demo store seeded: %s with %d products", store.Name, len(products))
}
