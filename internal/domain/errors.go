package domain

import "errors"

var (
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidAction = errors.New("invalid activity action")
	ErrInvalidTarget = errors.New("invalid activity target")
	ErrEmptyUpdate   = errors.New("update has no fields")
)
