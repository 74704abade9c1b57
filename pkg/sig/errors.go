package sig

import (
	"errors"
)

var (
	ErrEmptySecret        = errors.New("empty secret")
	ErrEmptyHeader        = errors.New("no signature header name provided")
	ErrMissingSignature   = errors.New("no signature header provided")
	ErrMalformedSignature = errors.New("malformed signature")
	ErrInvalidSignature   = errors.New("invalid signature")
)
