package checkout

import (
	"testing"

	"qbuy_backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.PaymentCard{},
		&models.OutboxEvent{},
	))
	return db
}

func seedBuyer(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		Username:  "buyer1",
		Email:     "buyer1@example.com",
		Password:  "x",
		Latitude:  6.9271,
		Longitude: 79.8612,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedStore(t *testing.T, db *gorm.DB, ownerID uint, name string, lat, lon float64) models.Store {
	t.Helper()
	store := models.Store{
		OwnerID:   ownerID,
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}
	require.NoError(t, db.Create(&store).Error)
	return store
}

func seedProduct(t *testing.T, db *gorm.DB, storeID uint, name string, price float64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		StoreID:     storeID,
		Name:        name,
		Price:       price,
		TotalStocks: stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedCartLine(t *testing.T, db *gorm.DB, userID uint, product models.Product, qty int) models.CartItem {
	t.Helper()
	line := models.CartItem{
		UserID:      userID,
		ProductID:   product.ID,
		StoreID:     product.StoreID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    qty,
	}
	require.NoError(t, db.Create(&line).Error)
	return line
}

func validDetails() CheckoutDetails {
	return CheckoutDetails{
		CustomerName:   "Kasun Perera",
		Address:        "12 Galle Road",
		City:           "Colombo",
		State:          "Western",
		ZipCode:        "00300",
		Phone:          "0771234567",
		DeliveryOption: "pick",
		PaymentMethod:  "cash",
	}
}

func stockOf(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.TotalStocks
}
