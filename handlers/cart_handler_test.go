package handlers

import (
	"net/http"
	"testing"

	"qbuy_backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func cartApp(t *testing.T, db *gorm.DB, userID uint) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := NewCartHandler(db)
	app.Get("/api/cart", asUser(userID), h.GetCart)
	app.Post("/api/cart", asUser(userID), h.AddToCart)
	app.Delete("/api/cart/:id", asUser(userID), h.RemoveCartItem)
	return app
}

func TestAddToCartSnapshotsPrice(t *testing.T) {
	db := testDB(t)

	user := models.User{Username: "buyer1", Email: "buyer1@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	store := models.Store{OwnerID: user.ID + 1, Name: "Pettah Electronics"}
	require.NoError(t, db.Create(&store).Error)
	product := models.Product{StoreID: store.ID, Name: "USB-C Cable", Price: 250, TotalStocks: 10}
	require.NoError(t, db.Create(&product).Error)

	app := cartApp(t, db, user.ID)
	resp, err := app.Test(jsonRequest("POST", "/api/cart", fiber.Map{
		"product_id": product.ID,
		"quantity":   2,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var line models.CartItem
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&line).Error)
	assert.InDelta(t, 250, line.Price, 1e-9)
	assert.Equal(t, "USB-C Cable", line.ProductName)
	assert.Equal(t, store.ID, line.StoreID)

	// A later price change does not rewrite the snapshot.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", 400).Error)
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&line).Error)
	assert.InDelta(t, 250, line.Price, 1e-9)
}

func TestAddToCartBumpsQuantityForSameProduct(t *testing.T) {
	db := testDB(t)

	user := models.User{Username: "buyer1", Email: "buyer1@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	store := models.Store{OwnerID: user.ID + 1, Name: "Pettah Electronics"}
	require.NoError(t, db.Create(&store).Error)
	product := models.Product{StoreID: store.ID, Name: "USB-C Cable", Price: 250, TotalStocks: 10}
	require.NoError(t, db.Create(&product).Error)

	app := cartApp(t, db, user.ID)
	for i := 0; i < 2; i++ {
		resp, err := app.Test(jsonRequest("POST", "/api/cart", fiber.Map{
			"product_id": product.ID,
			"quantity":   1,
		}))
		require.NoError(t, err)
		require.Less(t, resp.StatusCode, 300)
	}

	var lines []models.CartItem
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestRemoveCartItemScopedToOwner(t *testing.T) {
	db := testDB(t)

	owner := models.User{Username: "buyer1", Email: "buyer1@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)
	intruder := models.User{Username: "buyer2", Email: "buyer2@example.com", Password: "x"}
	require.NoError(t, db.Create(&intruder).Error)

	line := models.CartItem{UserID: owner.ID, ProductID: 1, StoreID: 1, ProductName: "USB-C Cable", Price: 250, Quantity: 1}
	require.NoError(t, db.Create(&line).Error)

	app := cartApp(t, db, intruder.ID)
	resp, err := app.Test(jsonRequest("DELETE", "/api/cart/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var count int64
	db.Model(&models.CartItem{}).Where("user_id = ?", owner.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
