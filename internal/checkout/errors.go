package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySelection is returned when checkout starts with no selected
	// cart lines.
	ErrEmptySelection = errors.New("select at least one item")

	// ErrCardRequired is returned when a card checkout has no saved payment
	// method resolved. The client should run the add-card flow and retry.
	ErrCardRequired = errors.New("a saved payment method is required for card payments")

	// ErrInvalidPromo is returned for unknown promo codes.
	ErrInvalidPromo = errors.New("the promo code you entered is not valid")

	// ErrNotCancellable is returned when an order is terminal or past the
	// cancellation window.
	ErrNotCancellable = errors.New("order can no longer be cancelled")

	// ErrNotAcceptable is returned when a seller accepts an order that is
	// no longer in the placed state.
	ErrNotAcceptable = errors.New("order can no longer be accepted")

	// ErrNotCompletable is returned when receipt is confirmed for an order
	// that is not in progress.
	ErrNotCompletable = errors.New("order is not awaiting delivery confirmation")

	// ErrAlreadyReviewed is returned on a second review submission for the
	// same order.
	ErrAlreadyReviewed = errors.New("this order has already been reviewed")

	// ErrNotReviewable is returned when a review is submitted before the
	// order is completed.
	ErrNotReviewable = errors.New("only completed orders can be reviewed")
)

// OutOfStockError aborts a commit without any writes when requested
// quantity exceeds the live stock count.
type OutOfStockError struct {
	ProductID   uint
	ProductName string
}

func (e *OutOfStockError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("%s is out of stock", e.ProductName)
	}
	return fmt.Sprintf("product %d is out of stock", e.ProductID)
}

// NotFoundError marks a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ValidationError reports a missing or malformed checkout field. It is
// locally recoverable by user correction.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
