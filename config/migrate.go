package config

import (
	"qbuy_backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Migrate the schema
	err := db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.PaymentCard{},
		&models.Favorite{},
		&models.ChatRoom{},
		&models.ChatParticipant{},
		&models.Message{},
		&models.OutboxEvent{},
	)

	if err != nil {
		logrus.Errorf("Failed to migrate database schema: %v", err)
		return err
	}

	logrus.Info("Database migrations completed successfully...")

	// Ensure categories are seeded even on normal migration
	SeedCategories(db)

	return err
}

func ResetAndMigrate(db *gorm.DB) error {
	// Drop all tables
	tables := []interface{}{
		&models.User{},
		&models.Store{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.PaymentCard{},
		&models.Favorite{},
		&models.ChatRoom{},
		&models.ChatParticipant{},
		&models.Message{},
		&models.OutboxEvent{},
	}

	if err := db.Migrator().DropTable(tables...); err != nil {
		logrus.Errorf("Failed to drop tables: %v", err)
		return err
	}

	if err := db.AutoMigrate(tables...); err != nil {
		logrus.Errorf("Failed to auto migrate: %v", err)
		return err
	}

	SeedCategories(db)
	SeedUsers(db)
	SeedStoresAndProducts(db)

	logrus.Info("Database reset and migration completed successfully.")
	return nil
}
