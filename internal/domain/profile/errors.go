package profile

import (
	"errors"

	"reliefmatch/backend/internal/storeerr"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = storeerr.ErrNotFound
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("profile already exists")
)

func IsErrUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsErrBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsErrConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
