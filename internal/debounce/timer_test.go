package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_RescheduleReplacesPendingFire(t *testing.T) {
	var fires atomic.Int32
	var d Timer

	d.Schedule(20*time.Millisecond, func() { fires.Add(1) })
	d.Schedule(20*time.Millisecond, func() { fires.Add(1) })
	d.Schedule(20*time.Millisecond, func() { fires.Add(1) })

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load(), "only the last schedule fires")
}

func TestTimer_Stop(t *testing.T) {
	var fires atomic.Int32
	var d Timer

	d.Schedule(20*time.Millisecond, func() { fires.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())

	// Timer stays usable after Stop.
	d.Schedule(10*time.Millisecond, func() { fires.Add(1) })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load())
}
