package manager

import "time"

// Status returns Unloaded or Loaded(context window, placement).
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return Status{}
	}
	return Status{
		Loaded:        true,
		Path:          m.cur.path,
		ContextTokens: m.cur.contextTokens,
		Placement:     m.cur.placement,
		LoadedAt:      m.cur.loadedAt,
	}
}

// GPUInfo summarizes the placement capability for display.
type GPUInfo struct {
	Available bool
	Backend   string
	Runtime   string
}

func (m *Manager) GPUInfo() GPUInfo {
	info := GPUInfo{Available: m.gpuCapable.Load(), Backend: "CPU"}
	if info.Available {
		info.Backend = "GPU"
	}
	if m.backend != nil {
		info.Runtime = m.backend.Name()
	}
	return info
}

// LoadsTotal counts successful loads since start.
func (m *Manager) LoadsTotal() uint64 { return m.loadsTotal.Load() }

// Uptime reports how long the manager has existed.
func (m *Manager) Uptime() time.Duration { return time.Since(m.startTime) }
