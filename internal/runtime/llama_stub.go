//go:build !llama

package runtime

// LlamaBackend is the no-CGO stand-in compiled without the 'llama' build tag.
// It keeps default builds CGO-free and fails every load with ErrUnavailable.
type LlamaBackend struct{}

// NewLlamaBackend returns the stub backend.
func NewLlamaBackend(threads int) *LlamaBackend { return &LlamaBackend{} }

func (b *LlamaBackend) SupportsGPU() bool { return false }

func (b *LlamaBackend) Name() string { return "llama.cpp (not built)" }

func (b *LlamaBackend) Load(path string, params LoadParams) (Model, error) {
	return nil, ErrUnavailable
}
