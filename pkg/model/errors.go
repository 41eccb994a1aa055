package model

import "errors"

// Core error taxonomy. Components wrap these with %w and context;
// the API layer maps them onto HTTP status codes.
var (
	// ErrNotFound signals an unknown participant, listing, order, or transaction reference.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument signals non-positive amounts/prices or malformed identifiers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateRegistration signals a participant id collision on registration.
	ErrDuplicateRegistration = errors.New("duplicate registration")
)
