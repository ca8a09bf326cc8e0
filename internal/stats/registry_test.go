package stats

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry(time.Second, zerolog.Nop())

	snapshot := r.Snapshot(context.Background())

	// Goroutine count comes from the runtime and can never fail.
	assert.Greater(t, snapshot["goroutines"], 0.0)
}

func TestRegistry_StartStopLifecycle(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, zerolog.Nop())

	assert.NoError(t, r.Start())
	assert.Error(t, r.Start())

	time.Sleep(25 * time.Millisecond)

	assert.NoError(t, r.Stop())
	assert.Error(t, r.Stop())
}

func TestGoroutineCollector(t *testing.T) {
	c := &GoroutineCollector{Logger: zerolog.Nop()}

	assert.Equal(t, "goroutines", c.Name())
	assert.Equal(t, "count", c.Unit())
	v := c.Collect(context.Background())
	if assert.NotNil(t, v) {
		assert.Greater(t, *v, 0.0)
	}
}
