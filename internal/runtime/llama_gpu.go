//go:build llama && gpu

package runtime

// Built against a GPU-enabled libllama (CUDA, Metal, Vulkan or HIP).
const gpuOffload = true
