package gesture

import (
	"math"
	"sort"

	"github.com/okian/kinetic/internal/domain/skeleton"
)

const (
	// UnknownLabel is reported when no reference is close enough.
	UnknownLabel = "Unknown"

	// MaxDisplayScore stands in for an infinite or not computed distance.
	MaxDisplayScore = 9999.0
)

// ReferenceGesture is a named set of recorded example sequences.
type ReferenceGesture struct {
	Name     string
	Examples [][]skeleton.Frame
}

// Result is the outcome of one classification attempt.
type Result struct {
	Label    string
	Distance float64
	Matched  bool
	// Compared counts the reference examples evaluated.
	Compared int
}

// DisplayScore maps infinite distances to MaxDisplayScore.
func DisplayScore(d float64) float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) || d > MaxDisplayScore {
		return MaxDisplayScore
	}
	return d
}

type reference struct {
	name     string
	examples [][]pose
}

// Matcher classifies a live buffer against reference gestures. References
// are read-only while Match runs; callers serialize mutation and matching.
type Matcher struct {
	refs      map[string]*reference
	threshold float64
	minLen    int
	maxLen    int
}

// NewMatcher creates a matcher with the default window and threshold.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		refs:      make(map[string]*reference),
		threshold: DefaultThreshold,
		minLen:    DefaultMinLength,
		maxLen:    DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddReference adds or replaces the examples recorded for ref.Name.
// Empty examples are skipped.
func (m *Matcher) AddReference(ref ReferenceGesture) {
	r := &reference{name: ref.Name}
	for _, ex := range ref.Examples {
		if len(ex) == 0 {
			continue
		}
		r.examples = append(r.examples, posesOf(ex))
	}
	m.refs[ref.Name] = r
}

// SetReferences replaces every reference.
func (m *Matcher) SetReferences(refs []ReferenceGesture) {
	clear(m.refs)
	for _, r := range refs {
		m.AddReference(r)
	}
}

// RemoveReference drops a reference gesture and reports whether it existed.
func (m *Matcher) RemoveReference(name string) bool {
	if _, ok := m.refs[name]; !ok {
		return false
	}
	delete(m.refs, name)
	return true
}

// Names returns the reference gesture names in sorted order.
func (m *Matcher) Names() []string {
	names := make([]string, 0, len(m.refs))
	for n := range m.refs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetLengths updates the acceptance window; invalid bounds are ignored.
func (m *Matcher) SetLengths(minLen, maxLen int) {
	WithLengths(minLen, maxLen)(m)
}

// Lengths returns the configured minimum and maximum gesture lengths.
func (m *Matcher) Lengths() (int, int) { return m.minLen, m.maxLen }

// Threshold returns the acceptance threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// InWindow reports whether a buffer of n frames is eligible for matching.
func (m *Matcher) InWindow(n int) bool {
	return n >= m.minLen/2 && n <= m.maxLen*2
}

// Slide drops the oldest frames of buf beyond the largest eligible length,
// keeping it a sliding window of recent motion. It reports the number of
// frames dropped.
func (m *Matcher) Slide(buf *Buffer) int {
	excess := buf.Len() - m.maxLen*2
	if excess <= 0 {
		return 0
	}
	if err := buf.RemoveRange(0, excess-1); err != nil {
		return 0
	}
	return excess
}

// Match classifies buf. On a match the buffer is cleared so the same motion
// is not reported twice.
func (m *Matcher) Match(buf *Buffer) Result {
	if !m.InWindow(buf.Len()) {
		return Result{Label: UnknownLabel, Distance: MaxDisplayScore}
	}

	live := posesOf(buf.frames)
	best, label, compared := math.Inf(1), UnknownLabel, 0
	for _, name := range m.Names() {
		for _, ex := range m.refs[name].examples {
			compared++
			if d := dtw(live, ex); d < best {
				best, label = d, name
			}
		}
	}

	if best <= m.threshold {
		buf.Clear()
		return Result{Label: label, Distance: best, Matched: true, Compared: compared}
	}
	return Result{Label: UnknownLabel, Distance: DisplayScore(best), Compared: compared}
}

// Scores returns the best distance per reference gesture without mutating
// buf. Distances are mapped through DisplayScore.
func (m *Matcher) Scores(buf *Buffer) map[string]float64 {
	out := make(map[string]float64, len(m.refs))
	live := posesOf(buf.frames)
	for name, r := range m.refs {
		best := math.Inf(1)
		for _, ex := range r.examples {
			best = math.Min(best, dtw(live, ex))
		}
		out[name] = DisplayScore(best)
	}
	return out
}
