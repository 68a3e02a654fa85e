package core

import (
	"sync"
	"time"

	"github.com/spaghettifunk/anima-cubes/engine/containers"
)

const AVG_COUNT uint8 = 30

// Metrics keeps a rolling average over the last AVG_COUNT build timings
// along with running totals.
type Metrics struct {
	mu sync.Mutex

	times *containers.RingQueue[time.Duration]
	avg   time.Duration

	builds    uint64
	cubes     uint64
	failures  uint64
	lastBuild time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		times: containers.NewRingQueue[time.Duration](int(AVG_COUNT)),
	}
}

// Update records one build of cubes cubes, failed of which failed.
func (m *Metrics) Update(elapsed time.Duration, cubes, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.times.Push(elapsed)

	var total time.Duration
	m.times.Each(func(d time.Duration) { total += d })
	m.avg = total / time.Duration(m.times.Len())

	m.builds++
	m.cubes += uint64(cubes)
	m.failures += uint64(failed)
	m.lastBuild = elapsed
}

// AverageBuildTime returns the mean of the retained samples.
func (m *Metrics) AverageBuildTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.avg
}

// Snapshot returns the running totals.
func (m *Metrics) Snapshot() (builds, cubes, failures uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds, m.cubes, m.failures
}

func (m *Metrics) LastBuildTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBuild
}
