package index

import "errors"

var (
	ErrInvalidDocID     = errors.New("invalid document id")
	ErrLengthMismatch   = errors.New("parallel array length mismatch")
	ErrStoreUnavailable = errors.New("index store unavailable")
)
