package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Catalog related errors
	ErrProductNotFound = errors.New("product not found")

	// Cart related errors
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
)
