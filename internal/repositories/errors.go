package repositories

import "errors"

var (
	ErrNotFound         = errors.New("[repository]: record not found")
	ErrInvalidArgument  = errors.New("[repository]: invalid argument")
	ErrKeyConflict      = errors.New("[repository]: key conflict")
	ErrAlreadyFinalized = errors.New("[repository]: record already finalized")
	ErrTransaction      = errors.New("[repository]: transaction error")
	ErrUnknown          = errors.New("[repository]: unknown error")
)
