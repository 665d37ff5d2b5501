package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"memoryd/internal/runtime"
)

type Manager struct {
	backend runtime.Backend
	// excl is the exclusive section for load/unload (capacity 1).
	excl chan struct{}

	mu  sync.RWMutex
	cur *Handle

	gpuCapable atomic.Bool
	settle     time.Duration
	lockWait   time.Duration
	threads    int
	publisher  EventPublisher
	log        zerolog.Logger

	loadsTotal atomic.Uint64
	lastErr    atomic.Value // string
	startTime  time.Time
}

// New constructs a Manager and probes the runtime's placement capability once.
func New(cfg Config) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{
		backend:   cfg.Backend,
		excl:      make(chan struct{}, 1),
		settle:    cfg.SettleDelay,
		lockWait:  cfg.LockWait,
		threads:   cfg.Threads,
		publisher: cfg.Publisher,
		log:       cfg.Logger.With().Str("component", "manager").Logger(),
		startTime: time.Now(),
	}
	m.probePlacement()
	return m
}

func (m *Manager) probePlacement() bool {
	gpu := m.backend != nil && m.backend.SupportsGPU()
	m.gpuCapable.Store(gpu)
	return gpu
}

// PlacementCapability reports the most recent probe of the runtime.
func (m *Manager) PlacementCapability() Capability {
	if m.gpuCapable.Load() {
		return GPUCapable
	}
	return CPUOnly
}

// Ready reports whether a model is loaded.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur != nil
}

// Acquire returns the current handle and a release func. The handle stays
// valid until release is called; Unload waits for outstanding references.
// ok is false when nothing is loaded.
func (m *Manager) Acquire() (h *Handle, release func(), ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return nil, func() {}, false
	}
	h = m.cur
	h.refs.Add(1)
	var once sync.Once
	return h, func() { once.Do(h.refs.Done) }, true
}

func (m *Manager) setLastErr(err error) {
	if err == nil {
		m.lastErr.Store("")
		return
	}
	m.lastErr.Store(err.Error())
}

// LastError returns the message of the most recent failed load, if any.
func (m *Manager) LastError() string {
	s, _ := m.lastErr.Load().(string)
	return s
}
