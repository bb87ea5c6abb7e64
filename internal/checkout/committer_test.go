package checkout

import (
	"testing"

	"qbuy_backend/internal/outbox"
	"qbuy_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderCommitsAtomically(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)
	store := seedStore(t, db, buyer.ID+1, "Pettah Electronics", 6.9355, 79.85)
	product := seedProduct(t, db, store.ID, "USB-C Cable", 250, 10)
	lineA := seedCartLine(t, db, buyer.ID, product, 2)

	intents, err := GroupByStore([]models.CartItem{lineA})
	require.NoError(t, err)

	order, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intents[0], validDetails())
	require.NoError(t, err)
	require.NotZero(t, order.ID)

	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.InDelta(t, 500, order.Subtotal, 1e-9)
	assert.InDelta(t, 500, order.TotalAmount, 1e-9)
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Stock went down and the cart line is gone.
	assert.Equal(t, 8, stockOf(t, db, product.ID))
	var remaining int64
	db.Model(&models.CartItem{}).Where("user_id = ?", buyer.ID).Count(&remaining)
	assert.Zero(t, remaining)

	// The placement event is queued in the same commit.
	events, err := outbox.FetchPending(db, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, outbox.TopicOrderPlaced, events[0].Topic)
}

func TestPlaceOrderHomeDeliveryAndPromo(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)
	store := seedStore(t, db, buyer.ID+1, "Pettah Electronics", 6.9355, 79.85)
	product := seedProduct(t, db, store.ID, "USB-C Cable", 500, 10)
	line := seedCartLine(t, db, buyer.ID, product, 2)

	details := validDetails()
	details.DeliveryOption = "home"
	details.DeliveryCost = 600
	details.PromoCode = "DISCOUNT10"

	order, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, OrderIntent{
		StoreID: store.ID, Lines: []models.CartItem{line},
	}, details)
	require.NoError(t, err)

	assert.InDelta(t, 1000, order.Subtotal, 1e-9)
	assert.InDelta(t, 100, order.Discount, 1e-9)
	assert.InDelta(t, 600, order.DeliveryCost, 1e-9)
	assert.InDelta(t, 1500, order.TotalAmount, 1e-9)
}

func TestPlaceOrderOutOfStockRollsBackEverything(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)
	store := seedStore(t, db, buyer.ID+1, "Pettah Electronics", 6.9355, 79.85)
	inStock := seedProduct(t, db, store.ID, "USB-C Cable", 250, 10)
	scarce := seedProduct(t, db, store.ID, "Power Bank", 3500, 1)
	lineA := seedCartLine(t, db, buyer.ID, inStock, 2)
	lineB := seedCartLine(t, db, buyer.ID, scarce, 5)

	_, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, OrderIntent{
		StoreID: store.ID, Lines: []models.CartItem{lineA, lineB},
	}, validDetails())

	var oos *OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, scarce.ID, oos.ProductID)

	// Nothing changed: no order, no decrement (not even for the line that
	// had stock), cart intact.
	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
	assert.Equal(t, 10, stockOf(t, db, inStock.ID))
	assert.Equal(t, 1, stockOf(t, db, scarce.ID))
	var remaining int64
	db.Model(&models.CartItem{}).Where("user_id = ?", buyer.ID).Count(&remaining)
	assert.Equal(t, int64(2), remaining)
}

func TestPlaceOrderNeverOversellsSequentially(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)
	other := models.User{Username: "buyer2", Email: "buyer2@example.com", Password: "x"}
	require.NoError(t, db.Create(&other).Error)

	store := seedStore(t, db, buyer.ID+10, "Pettah Electronics", 6.9355, 79.85)
	product := seedProduct(t, db, store.ID, "Power Bank", 3500, 3)

	lineA := seedCartLine(t, db, buyer.ID, product, 2)
	lineB := seedCartLine(t, db, other.ID, product, 2)

	_, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, OrderIntent{
		StoreID: store.ID, Lines: []models.CartItem{lineA},
	}, validDetails())
	require.NoError(t, err)

	_, err = PlaceOrder(db, BuyerContext{UserID: other.ID}, OrderIntent{
		StoreID: store.ID, Lines: []models.CartItem{lineB},
	}, validDetails())
	var oos *OutOfStockError
	require.ErrorAs(t, err, &oos)

	assert.Equal(t, 1, stockOf(t, db, product.ID))
}

func TestPlaceOrderIdempotentReplay(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)
	store := seedStore(t, db, buyer.ID+1, "Pettah Electronics", 6.9355, 79.85)
	product := seedProduct(t, db, store.ID, "USB-C Cable", 250, 10)
	line := seedCartLine(t, db, buyer.ID, product, 2)

	details := validDetails()
	details.IdempotencyKey = "req-abc-123"

	intent := OrderIntent{StoreID: store.ID, Lines: []models.CartItem{line}}

	first, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, details)
	require.NoError(t, err)

	second, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, details)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	// The replay decrements nothing.
	assert.Equal(t, 8, stockOf(t, db, product.ID))
}

func TestPlaceOrderValidatesDetails(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)
	store := seedStore(t, db, buyer.ID+1, "Pettah Electronics", 6.9355, 79.85)
	product := seedProduct(t, db, store.ID, "USB-C Cable", 250, 10)
	line := seedCartLine(t, db, buyer.ID, product, 1)

	intent := OrderIntent{StoreID: store.ID, Lines: []models.CartItem{line}}

	missing := validDetails()
	missing.Phone = ""
	_, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, missing)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "phone", ve.Field)

	badEmail := validDetails()
	badEmail.Email = "not-an-email"
	_, err = PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, badEmail)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	badPromo := validDetails()
	badPromo.PromoCode = "HALFPRICE"
	_, err = PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, badPromo)
	assert.ErrorIs(t, err, ErrInvalidPromo)

	// No stock was touched by any rejected attempt.
	assert.Equal(t, 10, stockOf(t, db, product.ID))
}

func TestPlaceOrderCardPayments(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)
	store := seedStore(t, db, buyer.ID+1, "Pettah Electronics", 6.9355, 79.85)
	product := seedProduct(t, db, store.ID, "USB-C Cable", 250, 10)
	line := seedCartLine(t, db, buyer.ID, product, 1)

	intent := OrderIntent{StoreID: store.ID, Lines: []models.CartItem{line}}

	noCard := validDetails()
	noCard.PaymentMethod = "card"
	_, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, noCard)
	assert.ErrorIs(t, err, ErrCardRequired)

	// A card belonging to someone else does not count.
	card := models.PaymentCard{
		UserID: buyer.ID + 99, HolderName: "Someone Else",
		Brand: "visa", LastFour: "4242", ExpiryMonth: 12, ExpiryYear: 2030,
	}
	require.NoError(t, db.Create(&card).Error)

	foreign := validDetails()
	foreign.PaymentMethod = "card"
	foreign.PaymentCardID = &card.ID
	_, err = PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, foreign)
	assert.ErrorIs(t, err, ErrCardRequired)

	owned := models.PaymentCard{
		UserID: buyer.ID, HolderName: "Kasun Perera",
		Brand: "visa", LastFour: "1111", ExpiryMonth: 6, ExpiryYear: 2029,
	}
	require.NoError(t, db.Create(&owned).Error)

	withCard := validDetails()
	withCard.PaymentMethod = "card"
	withCard.PaymentCardID = &owned.ID
	order, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, withCard)
	require.NoError(t, err)
	assert.Equal(t, "card", order.PaymentMethod)
}

func TestCheckoutSplitsAcrossStores(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)

	storeA := seedStore(t, db, buyer.ID+1, "Pettah Electronics", 6.9355, 79.85)
	storeB := seedStore(t, db, buyer.ID+2, "Fort Gadgets", 6.9344, 79.8428)
	cable := seedProduct(t, db, storeA.ID, "USB-C Cable", 250, 10)
	mouse := seedProduct(t, db, storeB.ID, "Wireless Mouse", 500, 5)

	lineA := seedCartLine(t, db, buyer.ID, cable, 2)
	lineB := seedCartLine(t, db, buyer.ID, mouse, 1)

	intents, err := GroupByStore([]models.CartItem{lineA, lineB})
	require.NoError(t, err)
	require.Len(t, intents, 2)

	details := validDetails()
	details.DeliveryOption = "home"
	details.DeliveryCost = 600

	var orders []*models.Order
	for _, intent := range intents {
		order, err := PlaceOrder(db, BuyerContext{UserID: buyer.ID}, intent, details)
		require.NoError(t, err)
		orders = append(orders, order)
	}

	require.Len(t, orders, 2)
	assert.Equal(t, storeA.ID, orders[0].StoreID)
	assert.Equal(t, storeB.ID, orders[1].StoreID)
	// Each store's order carries its own delivery charge.
	assert.InDelta(t, 1100, orders[0].TotalAmount, 1e-9)
	assert.InDelta(t, 1100, orders[1].TotalAmount, 1e-9)

	assert.Equal(t, 8, stockOf(t, db, cable.ID))
	assert.Equal(t, 4, stockOf(t, db, mouse.ID))
}
