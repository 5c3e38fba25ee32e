package pkg

import (
	"errors"
	"fmt"
)

var (
	ErrPoolNotFound          = errors.New("pool account not found")
	ErrUnknownProtocol       = errors.New("unknown protocol")
	ErrMalformedAccount      = errors.New("malformed account")
	ErrInputMintMismatch     = errors.New("input mint does not match pool tokens")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrAdapterFailure        = errors.New("adapter failure")

	// ErrAccountNotFound is returned by a Connection for an empty address.
	ErrAccountNotFound = errors.New("account not found")
)

// AdapterError carries a vendor failure through the dispatcher untouched.
type AdapterError struct {
	Protocol ProtocolName
	Err      error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s adapter: %v", e.Protocol, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

func (e *AdapterError) Is(target error) bool {
	return target == ErrAdapterFailure
}
