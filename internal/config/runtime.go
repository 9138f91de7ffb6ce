package config

import (
	"fmt"
	"sync"
	"time"
)

// Replay speed bounds
const (
	MinReplaySpeed = 0.1
	MaxReplaySpeed = 100.0
)

// MinEffectiveInterval is the shortest tick the replay loop will run at
const MinEffectiveInterval = time.Millisecond

// RuntimeConfig holds configuration values that can be changed at runtime.
// All methods are thread-safe.
type RuntimeConfig struct {
	mu                  sync.RWMutex
	replaySpeed         float64       // Multiplier: 0.1 - 100.0 (default 1.0)
	loop                bool          // Wrap to the first row at the end
	basePublishInterval time.Duration // Original publish interval from env
}

// NewRuntimeConfig creates a new RuntimeConfig from the static Config.
func NewRuntimeConfig(cfg *Config) *RuntimeConfig {
	return &RuntimeConfig{
		replaySpeed:         1.0,
		loop:                cfg.ReplayLoop,
		basePublishInterval: cfg.PublishInterval,
	}
}

// GetReplaySpeed returns the current replay speed multiplier.
func (rc *RuntimeConfig) GetReplaySpeed() float64 {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.replaySpeed
}

// GetLoop reports whether replay wraps around at the end of the dataset.
func (rc *RuntimeConfig) GetLoop() bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.loop
}

// GetEffectiveInterval returns the publish interval adjusted by the replay speed.
// Higher speed = shorter interval.
func (rc *RuntimeConfig) GetEffectiveInterval() time.Duration {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.effectiveInterval()
}

func (rc *RuntimeConfig) effectiveInterval() time.Duration {
	interval := time.Duration(float64(rc.basePublishInterval) / rc.replaySpeed)
	if interval < MinEffectiveInterval {
		return MinEffectiveInterval
	}
	return interval
}

// SetReplaySpeed sets the replay speed multiplier.
// Valid range: 0.1 - 100.0
func (rc *RuntimeConfig) SetReplaySpeed(speed float64) error {
	if speed < MinReplaySpeed || speed > MaxReplaySpeed {
		return fmt.Errorf("replay speed must be between %.1f and %.1f, got %f", MinReplaySpeed, MaxReplaySpeed, speed)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.replaySpeed = speed
	return nil
}

// SetLoop enables or disables wrapping at the end of the dataset.
func (rc *RuntimeConfig) SetLoop(loop bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.loop = loop
}

// RuntimeConfigSnapshot is a copy of all current values for safe reading.
type RuntimeConfigSnapshot struct {
	ReplaySpeed       float64
	Loop              bool
	BaseInterval      time.Duration
	EffectiveInterval time.Duration
}

// Snapshot returns a point-in-time copy of all runtime config values.
func (rc *RuntimeConfig) Snapshot() RuntimeConfigSnapshot {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return RuntimeConfigSnapshot{
		ReplaySpeed:       rc.replaySpeed,
		Loop:              rc.loop,
		BaseInterval:      rc.basePublishInterval,
		EffectiveInterval: rc.effectiveInterval(),
	}
}
