package expr

import (
	"sort"

	"j5.nz/surefire/errs"
)

// StatKind selects which rolling statistic a RollingStat node reads.
type StatKind int

const (
	StatMean StatKind = iota
	StatMedian
	StatMin
	StatMax
	StatRange
)

// MaxWindow is the largest window size a Stats may be configured with.
const MaxWindow = 10_000

// Stats is a bounded window of the last N evaluations of an inner
// expression. It owns two arrays of capacity N — one ring buffer, one
// sort scratch — and never allocates once built, matching the
// no-allocation-during-stepping policy.
type Stats struct {
	inner   Node
	n       int
	ring    []float64
	scratch []float64
	count   int
	head    int
}

// NewStats builds a Stats over inner with the given window size. It
// fails with ExcWin if n is not in [1, MaxWindow].
func NewStats(inner Node, n int) (*Stats, error) {
	if n < 1 || n > MaxWindow {
		return nil, errs.New(errs.ExcWin, "rolling window size %d out of range [1, %d]", n, MaxWindow)
	}
	return &Stats{
		inner:   inner,
		n:       n,
		ring:    make([]float64, n),
		scratch: make([]float64, n),
	}, nil
}

// Update evaluates the inner expression once and appends its value to
// the window, growing Count until it saturates at N.
func (s *Stats) Update() {
	s.ring[s.head] = s.inner.Eval().AsF64()
	s.head = (s.head + 1) % s.n
	if s.count < s.n {
		s.count++
	}
}

// live returns the window's valid entries. Before saturation the ring
// has only ever been written front-to-back starting at index 0, so
// the live entries are always exactly ring[:count] regardless of
// whether the window has wrapped.
func (s *Stats) live() []float64 { return s.ring[:s.count] }

// Value returns the current value of the requested statistic. Before
// the first Update, every statistic is defined to be 0.
func (s *Stats) Value(which StatKind) float64 {
	switch which {
	case StatMean:
		return s.Mean()
	case StatMedian:
		return s.Median()
	case StatMin:
		return s.Min()
	case StatMax:
		return s.Max()
	case StatRange:
		return s.Range()
	default:
		panic("expr: invalid StatKind")
	}
}

// Mean is the sum of the live window divided by Count.
func (s *Stats) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.live() {
		sum += v
	}
	return sum / float64(s.count)
}

// Min scans the live window for its minimum.
func (s *Stats) Min() float64 {
	if s.count == 0 {
		return 0
	}
	live := s.live()
	m := live[0]
	for _, v := range live[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max scans the live window for its maximum.
func (s *Stats) Max() float64 {
	if s.count == 0 {
		return 0
	}
	live := s.live()
	m := live[0]
	for _, v := range live[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Range is Max - Min over the live window.
func (s *Stats) Range() float64 {
	if s.count == 0 {
		return 0
	}
	return s.Max() - s.Min()
}

// Median copies the live window into the scratch buffer, sorts it,
// and returns the middle value (or the average of the two middle
// values when Count is even).
func (s *Stats) Median() float64 {
	if s.count == 0 {
		return 0
	}
	n := copy(s.scratch, s.live())
	scratch := s.scratch[:n]
	sort.Float64s(scratch)
	if n%2 == 1 {
		return scratch[n/2]
	}
	return (scratch[n/2-1] + scratch[n/2]) / 2
}

// Count returns how many evaluations the window currently holds.
func (s *Stats) Count() int { return s.count }

// WindowSize returns the configured N.
func (s *Stats) WindowSize() int { return s.n }
