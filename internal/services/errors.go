// Package services defines the business logic for people and their dogs.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer. Storage constraint violations are not mapped here; they
// travel up unchanged and are classified by package dberr.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrDogNotFound indicates that the requested dog does not exist.
	ErrDogNotFound = errors.New("dog not found")

	// ErrPersonNotFound indicates that the requested person does not exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrInvalidName is returned for blank names or names longer than
	// MaxNameRunes after normalization.
	ErrInvalidName = errors.New("name must be 1-100 characters")

	// ErrIdempotencyConflict is returned when a concurrent request recorded
	// the same Idempotency-Key first.
	ErrIdempotencyConflict = errors.New("request with this Idempotency-Key is already in progress")

	// ErrIdempotencyResourceGone is returned when an Idempotency-Key is
	// replayed after the person it created was removed.
	ErrIdempotencyResourceGone = fmt.Errorf("%w: the person created with this Idempotency-Key no longer exists", ErrIdempotencyConflict)
)
