package manager

import (
	"fmt"
	"sync"
	"time"

	"memoryd/internal/runtime"
)

// Capability is the placement capability probed from the runtime.
type Capability string

const (
	CPUOnly    Capability = "cpu_only"
	GPUCapable Capability = "gpu_capable"
)

// Placement describes where a loaded model lives.
type Placement struct {
	GPULayers int
}

// OnGPU reports whether any layer was offloaded.
func (p Placement) OnGPU() bool { return p.GPULayers > 0 }

func (p Placement) String() string {
	if p.GPULayers > 0 {
		return fmt.Sprintf("gpu(%d layers)", p.GPULayers)
	}
	return "cpu"
}

// Status is the externally observable lifecycle state: either unloaded, or
// loaded with a context window and placement.
type Status struct {
	Loaded        bool
	Path          string
	ContextTokens int
	Placement     Placement
	LoadedAt      time.Time
}

// Handle is the loaded model plus its configuration. Generations hold a
// reference from Acquire until release; Unload waits for them.
type Handle struct {
	model         runtime.Model
	path          string
	contextTokens int
	placement     Placement
	loadedAt      time.Time
	refs          sync.WaitGroup
}

func (h *Handle) Model() runtime.Model { return h.model }
func (h *Handle) Path() string { return h.path }
func (h *Handle) ContextTokens() int { return h.contextTokens }
func (h *Handle) Placement() Placement { return h.placement }
func (h *Handle) LoadedAt() time.Time { return h.loadedAt }
