package domain

import "errors"

var (
	// ErrUnsupportedEvent is returned when an event has no matching normalizer
	ErrUnsupportedEvent = errors.New("unsupported event")

	// ErrUnknownMarketplace is returned when a log is emitted by a contract that is not registered for the market
	ErrUnknownMarketplace = errors.New("unknown marketplace contract")

	// ErrInvalidDecimal is returned when a numeric field is not an unsigned decimal string
	ErrInvalidDecimal = errors.New("invalid decimal")
)
