package services

import "errors"

// Caller input errors. These are the only failures surfaced to clients;
// every tier or source failure degrades to a partial result instead.
var (
	ErrInvalidWindow = errors.New("invalid date range: start must precede end")
	ErrMissingTenant = errors.New("missing tenant identifier")
)
