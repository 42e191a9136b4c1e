package domain

import "fmt"

// Error is a sentinel domain error carrying a stable code for summary logs.
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns the stable machine code of the error.
func (e *Error) Code() string { return e.code }

var (
	ErrClientNotFound  = &Error{code: "CLIENT_NOT_FOUND", msg: "client not found"}
	ErrCartNotFound    = &Error{code: "CART_NOT_FOUND", msg: "cart not found"}
	ErrProductNotFound = &Error{code: "PRODUCT_NOT_FOUND", msg: "product not found"}
	ErrOrderNotFound   = &Error{code: "ORDER_NOT_FOUND", msg: "order not found"}

	// ErrCartEmpty guards checkout start and order creation.
	ErrCartEmpty = &Error{code: "CART_EMPTY", msg: "cart is empty"}

	// ErrOrderAlreadyPaid reports a repeated payment confirmation.
	// Callers treat it as a no-op, not a failure.
	ErrOrderAlreadyPaid = &Error{code: "ORDER_ALREADY_PAID", msg: "order already paid"}

	// ErrOrderNotPending rejects payment against a cancelled or paid order.
	ErrOrderNotPending = &Error{code: "ORDER_NOT_PENDING", msg: "order is not awaiting payment"}
)

// ValidationError reports a rejected checkout input. The message is shown
// to the user as a re-prompt, so Reason is written in user-facing language.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code implements the error-code contract for handler summary logs.
func (e *ValidationError) Code() string { return "VALIDATION_ERROR" }
