package assistant

import (
	"context"
	"time"

	"memoryd/internal/common/fsutil"
	"memoryd/internal/manager"
	"memoryd/internal/registry"
	"memoryd/pkg/types"
)

// ListModels scans the models directory and marks the loaded model.
func (s *Service) ListModels() ([]types.Model, error) {
	models, err := registry.LoadDir(s.modelsDir)
	if err != nil {
		return nil, err
	}
	st := s.mgr.Status()
	for i := range models {
		models[i].Loaded = st.Loaded && fsutil.SameFile(models[i].Path, st.Path)
	}
	return models, nil
}

// LoadModel loads a model by path or by file name in the models
// directory.
func (s *Service) LoadModel(ctx context.Context, ref string, contextTokens int) error {
	path, err := registry.Resolve(s.modelsDir, ref)
	if err != nil {
		return &manager.LifecycleError{Kind: manager.FileNotFound, Path: ref, Err: err}
	}
	return s.mgr.Load(ctx, path, contextTokens)
}

func (s *Service) UnloadModel(ctx context.Context) error { return s.mgr.Unload(ctx) }

// Status combines the lifecycle state with the generation state.
type Status struct {
	Model      manager.Status
	Capability manager.Capability
	Generating bool
	LastError  string
	LoadsTotal uint64
	Uptime     time.Duration
}

func (s *Service) Status() Status {
	return Status{
		Model:      s.mgr.Status(),
		Capability: s.mgr.PlacementCapability(),
		Generating: s.engine.Busy(),
		LastError:  s.mgr.LastError(),
		LoadsTotal: s.mgr.LoadsTotal(),
		Uptime:     s.mgr.Uptime(),
	}
}

func (s *Service) GPUInfo() manager.GPUInfo { return s.mgr.GPUInfo() }

// Ready reports whether a model is loaded.
func (s *Service) Ready() bool { return s.mgr.Ready() }
