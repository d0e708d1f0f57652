package selection

// Selector binds a fixed selection size so callers only supply user, pool and date.
// The zero value is not useful; use NewSelector.
type Selector struct {
	count int
}

// NewSelector creates a Selector returning DefaultCount items unless overridden.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{count: DefaultCount}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Count returns the configured selection size.
func (s *Selector) Count() int {
	return s.count
}

// Select returns the user's daily subset of pool.
func (s *Selector) Select(userID string, pool []string, date string) ([]string, error) {
	return SelectDaily(userID, pool, date, s.count)
}

// Distribution is Distribution bound to the configured count.
func (s *Selector) Distribution(userIDs []string, pool []string, date string) (Histogram, error) {
	return Distribution(userIDs, pool, date, s.count)
}
