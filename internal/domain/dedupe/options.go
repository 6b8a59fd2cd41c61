// Package dedupe guards against resolving the same author/title pair twice
// at once.
package dedupe

// defaultMaxSize bounds the in-flight map; resolutions are short-lived so
// the bound only matters when Release is leaked.
const defaultMaxSize = 10000

// Option applies a configuration option to the in-memory guard.
type Option func(*inMemoryGuard)

// WithMaxSize sets the maximum number of keys held at once.
// maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(g *inMemoryGuard) {
		g.maxSize = maxSize
	}
}
