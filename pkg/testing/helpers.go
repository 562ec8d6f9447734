// Package testing holds helpers shared by the integration tests: testcontainers for MongoDB
// and Redis plus context and cleanup plumbing.
package testing

import (
	"context"
	"testing"
	"time"
)

// Context returns a context cancelled after timeout or when the test finishes
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Cleanup runs release when the test finishes, with a fresh context since the test's own
// context may already be cancelled. Errors are reported but do not fail the test.
func Cleanup(t testing.TB, name string, release func(context.Context) error) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := release(ctx); err != nil {
			t.Logf("release %s: %v", name, err)
		}
	})
}
