package models

import "errors"

// Domain errors shared between services and handlers.
var (
	ErrMissingFields        = errors.New("missing required fields")
	ErrOrderNotFound        = errors.New("order not found")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrVerificationFailed   = errors.New("payment verification failed")
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")
)
