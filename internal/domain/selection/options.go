package selection

// DefaultCount is the number of questions a user is offered per day.
const DefaultCount = 10

// Option configures a Selector.
type Option func(*Selector)

// WithCount sets how many items Select returns. Negative values are ignored.
func WithCount(k int) Option {
	return func(s *Selector) {
		if k >= 0 {
			s.count = k
		}
	}
}
