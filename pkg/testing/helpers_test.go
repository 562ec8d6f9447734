package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContext(t *testing.T) {
	var ctx context.Context
	t.Run("inner", func(t *testing.T) {
		ctx = Context(t, time.Minute)
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
		assert.NoError(t, ctx.Err())
	})
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestCleanup(t *testing.T) {
	var released []string
	t.Run("inner", func(t *testing.T) {
		Cleanup(t, "ok", func(ctx context.Context) error {
			assert.NoError(t, ctx.Err())
			released = append(released, "ok")
			return nil
		})
		Cleanup(t, "failing", func(context.Context) error {
			released = append(released, "failing")
			return errors.New("already gone")
		})
	})
	assert.Equal(t, []string{"failing", "ok"}, released)
}
