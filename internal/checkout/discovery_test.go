package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Latitude offsets from the buyer chosen so the stores sit at roughly
// 1.2, 4.9 and 7.3 km.
const (
	buyerLat = 6.9271
	buyerLon = 79.8612

	nearLat = buyerLat + 1.2/111.19
	midLat  = buyerLat + 4.9/111.19
	farLat  = buyerLat + 7.3/111.19
)

func TestFindStoresForProductWithinRadius(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)

	near := seedStore(t, db, buyer.ID+1, "Near Electronics", nearLat, buyerLon)
	mid := seedStore(t, db, buyer.ID+2, "Mid Electronics", midLat, buyerLon)
	far := seedStore(t, db, buyer.ID+3, "Far Electronics", farLat, buyerLon)

	seedProduct(t, db, near.ID, "USB-C Cable", 950, 10)
	seedProduct(t, db, mid.ID, "USB-C Cable", 800, 10)
	seedProduct(t, db, far.ID, "USB-C Cable", 700, 10)

	offers, err := FindStoresForProduct(db, ProductQuery{
		ProductName: "USB-C Cable",
		Latitude:    buyerLat,
		Longitude:   buyerLon,
	})
	require.NoError(t, err)
	require.Len(t, offers, 2)

	got := map[uint]StoreOffer{}
	for _, o := range offers {
		got[o.Store.ID] = o
	}
	require.Contains(t, got, near.ID)
	require.Contains(t, got, mid.ID)
	assert.NotContains(t, got, far.ID)

	// Each offer carries that store's own price and distance.
	assert.InDelta(t, 950, got[near.ID].Price, 1e-9)
	assert.InDelta(t, 800, got[mid.ID].Price, 1e-9)
	assert.InDelta(t, 1.2, got[near.ID].DistanceKm, 0.05)
	assert.InDelta(t, 4.9, got[mid.ID].DistanceKm, 0.05)
}

func TestFindStoresForProductCustomRadius(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)

	far := seedStore(t, db, buyer.ID+1, "Far Electronics", farLat, buyerLon)
	seedProduct(t, db, far.ID, "USB-C Cable", 700, 10)

	offers, err := FindStoresForProduct(db, ProductQuery{
		ProductName: "USB-C Cable",
		Latitude:    buyerLat,
		Longitude:   buyerLon,
		RadiusKm:    10,
	})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, far.ID, offers[0].Store.ID)
}

func TestFindStoresForProductSkipsStoresWithoutCoordinates(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)

	unknown := seedStore(t, db, buyer.ID+1, "No Location", 0, 0)
	seedProduct(t, db, unknown.ID, "USB-C Cable", 500, 10)

	offers, err := FindStoresForProduct(db, ProductQuery{
		ProductName: "USB-C Cable",
		Latitude:    buyerLat,
		Longitude:   buyerLon,
	})
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestFindStoresForProductExactNameMatch(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)

	store := seedStore(t, db, buyer.ID+1, "Near Electronics", nearLat, buyerLon)
	seedProduct(t, db, store.ID, "USB-C Cable 2m", 950, 10)

	offers, err := FindStoresForProduct(db, ProductQuery{
		ProductName: "USB-C Cable",
		Latitude:    buyerLat,
		Longitude:   buyerLon,
	})
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestFindStoresForProductPreferredSelection(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)

	near := seedStore(t, db, buyer.ID+1, "Near Electronics", nearLat, buyerLon)
	mid := seedStore(t, db, buyer.ID+2, "Mid Electronics", midLat, buyerLon)
	seedProduct(t, db, near.ID, "USB-C Cable", 950, 10)
	seedProduct(t, db, mid.ID, "USB-C Cable", 800, 10)

	offers, err := FindStoresForProduct(db, ProductQuery{
		ProductName:      "USB-C Cable",
		Latitude:         buyerLat,
		Longitude:        buyerLon,
		PreferredStoreID: mid.ID,
	})
	require.NoError(t, err)
	require.Len(t, offers, 2)

	for _, o := range offers {
		assert.Equal(t, o.Store.ID == mid.ID, o.Selected)
	}
}

func TestFindStoresForProductAutoSelectsSingleOffer(t *testing.T) {
	db := testDB(t)
	buyer := seedBuyer(t, db)

	near := seedStore(t, db, buyer.ID+1, "Near Electronics", nearLat, buyerLon)
	seedProduct(t, db, near.ID, "USB-C Cable", 950, 10)

	offers, err := FindStoresForProduct(db, ProductQuery{
		ProductName: "USB-C Cable",
		Latitude:    buyerLat,
		Longitude:   buyerLon,
	})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.True(t, offers[0].Selected)
}
