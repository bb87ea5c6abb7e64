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

func checkoutApp(t *testing.T, db *gorm.DB, userID uint) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := NewCheckoutHandler(db, sharedMetrics(), 600)
	app.Post("/api/checkout", asUser(userID), h.Checkout)
	return app
}

func seedCheckoutFixture(t *testing.T, db *gorm.DB) (models.User, models.Product, models.CartItem) {
	t.Helper()
	user := models.User{Username: "buyer1", Email: "buyer1@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	store := models.Store{OwnerID: user.ID + 1, Name: "Pettah Electronics", Latitude: 6.9355, Longitude: 79.85}
	require.NoError(t, db.Create(&store).Error)

	product := models.Product{StoreID: store.ID, Name: "USB-C Cable", Price: 250, TotalStocks: 10}
	require.NoError(t, db.Create(&product).Error)

	line := models.CartItem{
		UserID: user.ID, ProductID: product.ID, StoreID: store.ID,
		ProductName: product.Name, Price: product.Price, Quantity: 2,
	}
	require.NoError(t, db.Create(&line).Error)
	return user, product, line
}

func checkoutBody(lineIDs []uint) fiber.Map {
	return fiber.Map{
		"cart_item_ids":   lineIDs,
		"customer_name":   "Kasun Perera",
		"address":         "12 Galle Road",
		"city":            "Colombo",
		"state":           "Western",
		"zip_code":        "00300",
		"phone":           "0771234567",
		"delivery_option": "pick",
		"payment_method":  "cash",
	}
}

func TestCheckoutEndpointPlacesOrder(t *testing.T) {
	db := testDB(t)
	user, product, line := seedCheckoutFixture(t, db)
	app := checkoutApp(t, db, user.ID)

	resp, err := app.Test(jsonRequest("POST", "/api/checkout", checkoutBody([]uint{line.ID})))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["orders_placed"])

	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, 8, updated.TotalStocks)
}

func TestCheckoutEndpointRejectsEmptySelection(t *testing.T) {
	db := testDB(t)
	user, _, _ := seedCheckoutFixture(t, db)
	app := checkoutApp(t, db, user.ID)

	resp, err := app.Test(jsonRequest("POST", "/api/checkout", checkoutBody(nil)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckoutEndpointStockConflict(t *testing.T) {
	db := testDB(t)
	user, product, line := seedCheckoutFixture(t, db)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("total_stocks", 1).Error)

	app := checkoutApp(t, db, user.ID)
	resp, err := app.Test(jsonRequest("POST", "/api/checkout", checkoutBody([]uint{line.ID})))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 0, body["orders_placed"])

	// Stock untouched by the failed attempt.
	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, 1, updated.TotalStocks)
}

func TestCheckoutEndpointMissingDetails(t *testing.T) {
	db := testDB(t)
	user, _, line := seedCheckoutFixture(t, db)
	app := checkoutApp(t, db, user.ID)

	body := checkoutBody([]uint{line.ID})
	body["phone"] = ""
	resp, err := app.Test(jsonRequest("POST", "/api/checkout", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckoutEndpointCardRequired(t *testing.T) {
	db := testDB(t)
	user, _, line := seedCheckoutFixture(t, db)
	app := checkoutApp(t, db, user.ID)

	body := checkoutBody([]uint{line.ID})
	body["payment_method"] = "card"
	resp, err := app.Test(jsonRequest("POST", "/api/checkout", body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCheckoutEndpointIdempotencyHeader(t *testing.T) {
	db := testDB(t)
	user, product, line := seedCheckoutFixture(t, db)
	app := checkoutApp(t, db, user.ID)

	req := jsonRequest("POST", "/api/checkout", checkoutBody([]uint{line.ID}))
	req.Header.Set("Idempotency-Key", "client-token-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	retry := jsonRequest("POST", "/api/checkout", checkoutBody([]uint{line.ID}))
	retry.Header.Set("Idempotency-Key", "client-token-1")
	resp, err = app.Test(retry)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// One order, one decrement.
	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, int64(1), orders)

	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, 8, updated.TotalStocks)
}
