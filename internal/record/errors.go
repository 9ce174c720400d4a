package record

import "errors"

var (
	ErrNonFiniteFloat  = errors.New("non-finite float values cannot be canonicalized")
	ErrNonStringMapKey = errors.New("map keys must be strings")
	ErrUnsupportedType = errors.New("unsupported type for canonicalization")
	ErrKeyCollision    = errors.New("normalized map key collision")
	ErrMissingRecordID = errors.New("record has no record_id")
)
