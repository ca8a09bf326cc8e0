package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Martius108/mc-connect-hub/internal/models"
)

func reading(value float64, unit string) models.TelemetryValue {
	return models.TelemetryValue{Value: value, Unit: unit, Timestamp: time.Now()}
}

func TestCache_PutGet(t *testing.T) {
	c := New()

	_, ok := c.Get("esp01", "temperature")
	assert.False(t, ok)

	c.Put("esp01", "temperature", reading(23.5, "°C"))

	got, ok := c.Get("esp01", "temperature")
	assert.True(t, ok)
	assert.Equal(t, 23.5, got.Value)
	assert.Equal(t, "°C", got.Unit)
}

func TestCache_LastWriteWins(t *testing.T) {
	c := New()

	for i := 0; i < 100; i++ {
		c.Put("esp01", "led", reading(float64(i), ""))
	}

	got, ok := c.Get("esp01", "led")
	assert.True(t, ok)
	assert.Equal(t, 99.0, got.Value)
}

func TestCache_GetAllReturnsCopy(t *testing.T) {
	c := New()
	c.Put("esp01", "temperature", reading(23.5, ""))

	snapshot := c.GetAll("esp01")
	snapshot["temperature"] = reading(0, "")
	snapshot["injected"] = reading(1, "")

	got, ok := c.Get("esp01", "temperature")
	assert.True(t, ok)
	assert.Equal(t, 23.5, got.Value)
	_, ok = c.Get("esp01", "injected")
	assert.False(t, ok)
}

func TestCache_PutAll(t *testing.T) {
	c := New()

	c.PutAll("esp01", map[string]models.TelemetryValue{
		"temperature": reading(23.5, "°C"),
		"humidity":    reading(55, "%"),
	})

	assert.Len(t, c.GetAll("esp01"), 2)
	assert.True(t, c.HasData("esp01"))

	c.PutAll("esp01", nil)
	assert.Len(t, c.GetAll("esp01"), 2)
}

func TestCache_DropDevice(t *testing.T) {
	c := New()
	c.Put("esp01", "temperature", reading(23.5, ""))
	c.Put("pico01", "led", reading(1, ""))

	c.DropDevice("esp01")

	assert.Empty(t, c.GetAll("esp01"))
	assert.False(t, c.HasData("esp01"))
	assert.True(t, c.HasData("pico01"))
	assert.Equal(t, 1, c.Len())
}

func TestCache_DropAll(t *testing.T) {
	c := New()
	c.Put("esp01", "temperature", reading(23.5, ""))
	c.Put("pico01", "led", reading(1, ""))

	c.DropAll()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.DeviceIDs())
}

// Concurrent writers on different keywords must never corrupt a device
// snapshot: every read observes complete readings.
func TestCache_ConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			keyword := fmt.Sprintf("kw%d", w)
			for i := 0; i < 500; i++ {
				c.Put("esp01", keyword, reading(float64(i), "u"))
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			for keyword, value := range c.GetAll("esp01") {
				// A torn write would surface as a reading with a lost
				// unit or an unknown keyword.
				assert.Equal(t, "u", value.Unit)
				assert.Contains(t, []string{"kw0", "kw1", "kw2", "kw3"}, keyword)
			}
		}
	}()

	wg.Wait()

	for w := 0; w < 4; w++ {
		got, ok := c.Get("esp01", fmt.Sprintf("kw%d", w))
		assert.True(t, ok)
		assert.Equal(t, 499.0, got.Value)
	}
}
