package models

import "errors"

var (
	ErrInvalidGuest   = errors.New("invalid guest")
	ErrUnknownDriver  = errors.New("unknown storage driver")
	ErrAlreadyMounted = errors.New("banner already mounted")
)
