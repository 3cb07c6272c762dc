package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyCart     = errors.New("cart is empty, nothing to submit")
)

// rejection is implemented by errors that mean "the submission was refused,
// nothing was mutated, fix the input and retry". Everything else coming out
// of the pipeline is an internal failure.
type rejection interface {
	OrderRejection()
}

// IsRejection reports whether err is a user-correctable refusal rather than
// an internal failure.
func IsRejection(err error) bool {
	var r rejection
	if errors.As(err, &r) {
		return true
	}
	return errors.Is(err, ErrEmptyCart)
}

// ProductUnavailableError rejects a cart referencing a missing or
// deactivated product.
type ProductUnavailableError struct {
	ProductID int64
	Name      string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %q (id %d) is not available", e.Name, e.ProductID)
}

func (e *ProductUnavailableError) OrderRejection() {}

// StockError rejects a cart line asking for more units than are on hand.
type StockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d requested, %d available", e.Name, e.Requested, e.Available)
}

func (e *StockError) OrderRejection() {}

// PriceMismatchError rejects a cart whose quoted unit price has drifted from
// the catalog price beyond tolerance. Lines are always priced server-side;
// this guards the customer against a stale cart, and the store against a
// tampered one.
type PriceMismatchError struct {
	ProductID   int64
	Name        string
	QuotedPrice float64
	Price       float64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price of %q changed from %.2f to %.2f, please review your cart", e.Name, e.QuotedPrice, e.Price)
}

func (e *PriceMismatchError) OrderRejection() {}

// InvalidCustomerError rejects a submission with missing or malformed
// customer fields.
type InvalidCustomerError struct {
	Reason string
}

func (e *InvalidCustomerError) Error() string {
	return "invalid customer data: " + e.Reason
}

func (e *InvalidCustomerError) OrderRejection() {}
