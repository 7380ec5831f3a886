package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the world tick period when none is configured.
const DefaultTickInterval = 250 * time.Millisecond

// TickHook runs around every world tick. tick counts from 1.
type TickHook func(tick uint64)

type entry struct {
	id         uint32
	controller Controller
}

// TickManager drives all registered controllers once per tick.
// Controllers tick in registration order so a run is reproducible.
type TickManager struct {
	mu       sync.Mutex
	entries  []entry
	interval time.Duration
	before   []TickHook
	after    []TickHook
	ticks    uint64
	stopOnce sync.Once
	stopCh   chan struct{}
}

// ManagerOption configures a TickManager.
type ManagerOption func(*TickManager)

// WithBeforeTick adds a hook that runs before controllers tick
// (the world applies pending map switches here).
func WithBeforeTick(h TickHook) ManagerOption {
	return func(m *TickManager) { m.before = append(m.before, h) }
}

// WithAfterTick adds a hook that runs after every controller ticked.
func WithAfterTick(h TickHook) ManagerOption {
	return func(m *TickManager) { m.after = append(m.after, h) }
}

// NewTickManager creates new AI tick manager
func NewTickManager(interval time.Duration, opts ...ManagerOption) *TickManager {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	m := &TickManager{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register registers AI controller for NPC.
// Re-registering an id replaces the previous controller in place.
func (m *TickManager) Register(objectID uint32, controller Controller) {
	m.mu.Lock()
	replaced := false
	for i := range m.entries {
		if m.entries[i].id == objectID {
			m.entries[i].controller.Stop()
			m.entries[i].controller = controller
			replaced = true
			break
		}
	}
	if !replaced {
		m.entries = append(m.entries, entry{id: objectID, controller: controller})
	}
	m.mu.Unlock()

	controller.Start()

	slog.Debug("AI controller registered",
		"objectID", objectID,
		"intention", controller.CurrentIntention())
}

// Unregister unregisters AI controller
func (m *TickManager) Unregister(objectID uint32) {
	m.mu.Lock()
	var removed Controller
	for i := range m.entries {
		if m.entries[i].id == objectID {
			removed = m.entries[i].controller
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	if removed == nil {
		return
	}
	removed.Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// Start starts AI tick loop (blocks until context is canceled or Stop is called)
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("AI tick manager started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping", "ticks", m.Ticks())
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("AI tick manager stopped", "ticks", m.Ticks())
			return nil

		case <-ticker.C:
			// Stop wins over a tick that was already queued.
			select {
			case <-m.stopCh:
				slog.Info("AI tick manager stopped", "ticks", m.Ticks())
				return nil
			default:
			}
			m.TickOnce()
		}
	}
}

// Stop stops AI tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// TickOnce runs one full tick synchronously: before hooks, every
// controller in registration order, after hooks.
func (m *TickManager) TickOnce() uint64 {
	m.mu.Lock()
	m.ticks++
	tick := m.ticks
	controllers := make([]Controller, len(m.entries))
	for i, e := range m.entries {
		controllers[i] = e.controller
	}
	m.mu.Unlock()

	for _, h := range m.before {
		h(tick)
	}
	for _, c := range controllers {
		c.Tick()
	}
	for _, h := range m.after {
		h(tick)
	}

	if len(controllers) > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "tick", tick, "controllers", len(controllers))
	}
	return tick
}

// Ticks returns how many ticks have run.
func (m *TickManager) Ticks() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

// Count returns number of registered controllers
func (m *TickManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// GetController returns controller for NPC
func (m *TickManager) GetController(objectID uint32) (Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.id == objectID {
			return e.controller, nil
		}
	}
	return nil, fmt.Errorf("controller not found for objectID %d", objectID)
}
