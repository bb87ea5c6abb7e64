package checkout

import (
	"qbuy_backend/models"

	"github.com/sirupsen/logrus"
)

// OrderIntent is a per-store grouping of cart lines about to become one
// order.
type OrderIntent struct {
	StoreID uint
	Lines   []models.CartItem
}

// Subtotal is the sum of the snapshot prices times quantities.
func (oi OrderIntent) Subtotal() float64 {
	var total float64
	for _, line := range oi.Lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// GroupByStore partitions the selected cart lines by store, preserving
// line order within each group and group order by first appearance.
// Lines with no store reference are a data integrity problem, not a
// user-facing failure: they are dropped with a warning.
func GroupByStore(lines []models.CartItem) ([]OrderIntent, error) {
	intents := []OrderIntent{}
	index := map[uint]int{}

	for _, line := range lines {
		if line.StoreID == 0 {
			logrus.Warnf("cart line %d has no store reference, dropping from checkout", line.ID)
			continue
		}
		i, ok := index[line.StoreID]
		if !ok {
			i = len(intents)
			index[line.StoreID] = i
			intents = append(intents, OrderIntent{StoreID: line.StoreID})
		}
		intents[i].Lines = append(intents[i].Lines, line)
	}

	if len(intents) == 0 {
		return nil, ErrEmptySelection
	}
	return intents, nil
}
