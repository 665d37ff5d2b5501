//go:build llama && !gpu

package runtime

const gpuOffload = false
