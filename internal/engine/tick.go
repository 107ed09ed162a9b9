// Package engine provides the tick-based simulation loop and the simulation
// that composes factions, crew, rivals, and per-player reputation.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Simulated periods, in seconds.
const (
	SecondsPerHour = 3600.0
	SecondsPerDay  = 24 * SecondsPerHour
	SecondsPerWeek = 7 * SecondsPerDay

	// DefaultStepSeconds is one sim-minute per tick.
	DefaultStepSeconds = 60.0
)

// Engine drives the simulation forward. Each tick advances StepSeconds of
// simulated time; the hour, day, and week layers fire on the tick that
// crosses their boundary.
type Engine struct {
	Tick        uint64        // Current tick counter (monotonic, never resets)
	Interval    time.Duration // Wall-clock time per tick at speed 1
	StepSeconds float64       // Simulated seconds per tick

	// Callbacks for each tick layer, populated during setup.
	OnTick func(tick uint64, dt float64)
	OnHour func(tick uint64)
	OnDay  func(tick uint64)
	OnWeek func(tick uint64)

	mu      sync.Mutex
	speed   float64 // 1.0 = real-time, 0 = paused
	running bool
	cancel  context.CancelFunc
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Interval:    time.Second,
		StepSeconds: DefaultStepSeconds,
		speed:       1.0,
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Zero pauses; negative values are
// treated as zero.
func (e *Engine) SetSpeed(s float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = math.Max(0, s)
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts the simulation loop. Blocks until ctx is cancelled or Stop is
// called.
func (e *Engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.running = true
	e.cancel = cancel
	e.mu.Unlock()
	defer func() {
		cancel()
		e.mu.Lock()
		e.running = false
		e.cancel = nil
		e.mu.Unlock()
	}()

	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed(), "step_seconds", e.StepSeconds)

	for {
		speed := e.Speed()
		if speed <= 0 {
			// Paused: check again shortly.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()
		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		target := time.Duration(float64(e.Interval) / speed)
		if !sleep(ctx, target-time.Since(start)) {
			break
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Step advances the simulation by one tick.
func (e *Engine) Step() {
	before := float64(e.Tick) * e.StepSeconds
	e.Tick++
	after := float64(e.Tick) * e.StepSeconds

	if e.OnTick != nil {
		e.OnTick(e.Tick, e.StepSeconds)
	}
	if crossed(before, after, SecondsPerHour) && e.OnHour != nil {
		e.OnHour(e.Tick)
	}
	if crossed(before, after, SecondsPerDay) && e.OnDay != nil {
		e.OnDay(e.Tick)
	}
	if crossed(before, after, SecondsPerWeek) && e.OnWeek != nil {
		e.OnWeek(e.Tick)
	}
}

// SimSeconds is the simulated time at the current tick.
func (e *Engine) SimSeconds() float64 {
	return float64(e.Tick) * e.StepSeconds
}

func crossed(before, after, period float64) bool {
	return math.Floor(after/period) > math.Floor(before/period)
}

// SimTime returns a human-readable simulation time from elapsed simulated
// seconds.
func SimTime(seconds float64) string {
	total := uint64(math.Max(0, seconds)) / 60
	minutes := total % 60
	hours := (total / 60) % 24
	days := total/(60*24) + 1
	return fmt.Sprintf("Day %d, %d:%02d", days, hours, minutes)
}
