// Package errors provides custom error types for storefront operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")

var ErrLineNotFound = errors.New("cart line not found")
var ErrNoCartRecord = errors.New("no cart record")
var ErrFailedToPersistCart = errors.New("failed to persist cart")

var ErrUnknownShippingMethod = errors.New("unknown shipping method")
var ErrEmptyCart = errors.New("cart is empty")

var ErrOrderNotFound = errors.New("order not found")

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")
var ErrPaymentRejected = errors.New("payment rejected by gateway")
var ErrPaymentNotConfigured = errors.New("payment gateway is not configured")

var ErrMailNotConfigured = errors.New("mail relay is not configured")
var ErrRelayUnavailable = errors.New("mail relay unavailable")

var ErrInvalidImageRef = errors.New("invalid image reference")
var ErrImageNotFound = errors.New("image not found")
