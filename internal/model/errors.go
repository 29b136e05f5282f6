package model

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrTokenMalformed = errors.New("remember token malformed")
	ErrTokenExpired   = errors.New("remember token expired")
	ErrTokenMismatch  = errors.New("remember token mismatch")
	ErrTokenOrphaned  = errors.New("remember token owner missing")
)
