package domain

import "errors"

// Repository level errors. Usecases translate them into AppErrors.
var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("resource already exists")
	ErrInUse     = errors.New("resource is referenced by other records")
)
