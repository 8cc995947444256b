package match

import (
	"errors"

	"reliefmatch/backend/internal/storeerr"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = storeerr.ErrNotFound
	// ErrConflict: the pair is valid but the current state forbids it
	// (request no longer PENDING, resource unavailable).
	ErrConflict = errors.New("conflict")
)

func IsErrBadRequest(err error) bool   { return errors.Is(err, ErrBadRequest) }
func IsErrUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsErrNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsErrConflict(err error) bool     { return errors.Is(err, ErrConflict) }
