package checkout

import (
	"qbuy_backend/internal/geo"
	"qbuy_backend/models"

	"gorm.io/gorm"
)

// DefaultRadiusKm bounds the nearby-store search when the caller does not
// override it.
const DefaultRadiusKm = 5.0

// ProductQuery describes a nearby-offer search. Matching is by exact
// product name: sellers must list the item under the same name for
// cross-store comparison to find it.
type ProductQuery struct {
	ProductName string
	Latitude    float64
	Longitude   float64
	RadiusKm    float64

	// PreferredStoreID pre-selects this store when it is among the results.
	PreferredStoreID uint
}

// StoreOffer is one store carrying the queried product, with the price
// resolved from that store's own product row. Stores without a priced row
// never appear, so a zero price is never shown.
type StoreOffer struct {
	Store      models.Store `json:"store"`
	ProductID  uint         `json:"product_id"`
	Price      float64      `json:"price"`
	DistanceKm float64      `json:"distance_km"`
	Selected   bool         `json:"selected"`
}

// FindStoresForProduct returns the stores within the radius that carry a
// product with the given name. Stores without coordinates are skipped.
// If the preferred store qualifies it is marked selected; otherwise a
// single qualifying store is auto-selected.
func FindStoresForProduct(db *gorm.DB, q ProductQuery) ([]StoreOffer, error) {
	if q.RadiusKm <= 0 {
		q.RadiusKm = DefaultRadiusKm
	}

	var products []models.Product
	if err := db.Preload("Store").Where("name = ?", q.ProductName).Find(&products).Error; err != nil {
		return nil, err
	}

	offers := []StoreOffer{}
	preferredAt := -1
	for _, product := range products {
		store := product.Store
		if store.ID == 0 || !store.HasCoordinates() {
			continue
		}
		distance := geo.Distance(q.Latitude, q.Longitude, store.Latitude, store.Longitude)
		if distance > q.RadiusKm {
			continue
		}
		if store.ID == q.PreferredStoreID {
			preferredAt = len(offers)
		}
		// Hide the store's own product list in the offer payload.
		store.Products = nil
		offers = append(offers, StoreOffer{
			Store:      store,
			ProductID:  product.ID,
			Price:      product.Price,
			DistanceKm: distance,
		})
	}

	if preferredAt >= 0 {
		offers[preferredAt].Selected = true
	} else if len(offers) == 1 {
		offers[0].Selected = true
	}

	return offers, nil
}
