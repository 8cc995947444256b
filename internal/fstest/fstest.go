// Package fstest connects repo tests to the Firestore emulator.
package fstest

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
)

const projectID = "reliefmatch-test"

// Client returns a client bound to the emulator, or skips the test when
// FIRESTORE_EMULATOR_HOST is not set.
func Client(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	c, err := firestore.NewClient(context.Background(), projectID)
	if err != nil {
		t.Fatalf("firestore.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}
