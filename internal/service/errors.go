package service

import "errors"

var (
	ErrNoStore = errors.New("service: store is required")
)
