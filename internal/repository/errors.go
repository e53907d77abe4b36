package repository

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("record already exists")
	ErrCapacityReached = errors.New("session capacity reached")
)
