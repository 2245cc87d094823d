package service

import "errors"

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrInvalidScope     = errors.New("invalid scope")
	ErrNoSession        = errors.New("no valid session credential")
	ErrIdentityMismatch = errors.New("credential was issued to another client")
)
