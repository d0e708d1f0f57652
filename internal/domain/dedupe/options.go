package dedupe

// Option applies a configuration option to the deduper.
type Option func(*lruDeduper)

// WithMaxSize sets the maximum number of keys to keep in memory.
// Non-positive values keep the default.
func WithMaxSize(maxSize int) Option {
	return func(d *lruDeduper) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}
