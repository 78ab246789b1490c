package types

import "errors"

var (
	ErrMalformedInitMessage = errors.New("malformed init message")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrNoElevatorAvailable  = errors.New("no elevator available")
	ErrTransportFailure     = errors.New("transport failure")
	ErrStartupTimeout       = errors.New("startup timed out")
	ErrDuplicateFloor       = errors.New("floor already registered")
	ErrDuplicateElevator    = errors.New("elevator already registered")
)
