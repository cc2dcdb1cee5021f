package gesture

// Defaults for the matcher acceptance window and threshold.
const (
	DefaultThreshold = 20.0
	DefaultMinLength = 10
	DefaultMaxLength = 60
)

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the maximum distance accepted as a match.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		if threshold > 0 {
			m.threshold = threshold
		}
	}
}

// WithLengths sets the bounds of the acceptance window. The matcher only
// compares buffers holding between minLen/2 and maxLen*2 frames.
func WithLengths(minLen, maxLen int) Option {
	return func(m *Matcher) {
		if minLen > 0 && maxLen >= minLen {
			m.minLen, m.maxLen = minLen, maxLen
		}
	}
}

// WithReferences preloads reference gestures.
func WithReferences(refs ...ReferenceGesture) Option {
	return func(m *Matcher) {
		for _, r := range refs {
			m.AddReference(r)
		}
	}
}
