package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrDonationFinalized  = errors.New("donation no longer in initial status")
	ErrDuplicateToken     = errors.New("duplicate token")
)
