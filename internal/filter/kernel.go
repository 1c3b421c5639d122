package filter

import (
	"sync"

	"github.com/chewxy/math32"
)

// KernelRadius returns the half width of the Gaussian kernel for sigma:
// ceil(3 * sigma), which covers 99.7% of the distribution.
func KernelRadius(sigma float32) int {
	if sigma <= 0 {
		return 0
	}
	return int(math32.Ceil(sigma * 3))
}

// GaussianKernel generates a normalized 1D Gaussian kernel of size
// 2*KernelRadius(sigma)+1. For sigma <= 0 it returns the identity kernel.
func GaussianKernel(sigma float32) []float32 {
	half := KernelRadius(sigma)
	if half == 0 {
		return []float32{1}
	}

	kernel := make([]float32, half*2+1)
	twoSigmaSq := 2 * sigma * sigma
	var sum float32
	for i := range kernel {
		x := float32(i - half)
		v := math32.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = v
		sum += v
	}

	inv := 1 / sum
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// kernelCache memoizes kernels keyed by sigma quantized to 0.01.
type kernelCache struct {
	mu     sync.RWMutex
	cache  map[int][]float32
	maxLen int
}

var defaultKernelCache = newKernelCache(64)

func newKernelCache(maxLen int) *kernelCache {
	return &kernelCache{
		cache:  make(map[int][]float32),
		maxLen: maxLen,
	}
}

func (c *kernelCache) get(sigma float32) []float32 {
	key := int(math32.Round(sigma * 100))

	c.mu.RLock()
	if k, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return k
	}
	c.mu.RUnlock()

	k := GaussianKernel(float32(key) / 100)

	c.mu.Lock()
	if len(c.cache) >= c.maxLen {
		// Drop an arbitrary half.
		n := 0
		for key := range c.cache {
			delete(c.cache, key)
			n++
			if n >= c.maxLen/2 {
				break
			}
		}
	}
	c.cache[key] = k
	c.mu.Unlock()
	return k
}

// CachedGaussianKernel returns a shared kernel for sigma. Callers must not
// modify it.
func CachedGaussianKernel(sigma float32) []float32 {
	return defaultKernelCache.get(sigma)
}
