package services

import "errors"

var (
	ErrUnknown           = errors.New("[service]: unknown error")
	ErrRecordNotFound    = errors.New("[service]: record not found")
	ErrKeyConflict       = errors.New("[service]: key already taken")
	ErrInvalidKey        = errors.New("[service]: invalid key")
	ErrInvalidURL        = errors.New("[service]: invalid url")
	ErrInconsistentState = errors.New("[service]: inconsistent state")
)
