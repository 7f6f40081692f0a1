package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(nil, nil, slog.Default())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean shutdown, not a failure")
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
