// Package storeerr sorts Firestore failures into retryable and terminal ones.
package storeerr

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrRetryable marks failures a caller may retry (network blip, contention, quota).
	ErrRetryable = errors.New("temporarily unavailable")
	ErrNotFound  = errors.New("not found")
	ErrExists    = errors.New("already exists")
)

func IsRetryable(err error) bool { return errors.Is(err, ErrRetryable) }
func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsExists(err error) bool    { return errors.Is(err, ErrExists) }

// Wrap annotates err with op and, when the gRPC code says so, ErrRetryable or
// ErrNotFound or ErrExists. Domain sentinels already in the chain are preserved.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, ErrRetryable, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	}

	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w: %w", op, ErrExists, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
		return fmt.Errorf("%s: %w: %w", op, ErrRetryable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
