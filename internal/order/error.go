package order

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyItems      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidTotal    = errors.New("order total must be greater than zero")
)
