package stocks

import "errors"

var (
	ErrNotFound = errors.New("symbol not found")
	ErrStatus   = errors.New("unexpected status code")
)
