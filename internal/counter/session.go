package counter

// Band is a coarse progress level toward a session target.
type Band int

// Progress bands. Thresholds are 40%, 60% and 80% of the target.
const (
	BandStart Band = iota
	BandForty
	BandSixty
	BandEighty
)

// Session counts taps toward a target within one sitting. It is separate
// from the persisted daily tally: resetting a session never touches storage.
// A Session is not safe for concurrent use.
type Session struct {
	target       int
	stopAtTarget bool
	count        int
	reached      bool
}

// NewSession returns a session counting toward target. With stopAtTarget set
// taps beyond the target are refused.
func NewSession(target int, stopAtTarget bool) *Session {
	return &Session{target: target, stopAtTarget: stopAtTarget}
}

// Count returns the taps counted so far.
func (s *Session) Count() int { return s.count }

// Target returns the current target. Zero means no target.
func (s *Session) Target() int { return s.target }

// Reached reports whether the target has been hit in this session.
func (s *Session) Reached() bool { return s.reached }

// Tap counts one repetition. accepted is false when the session is full and
// stops at its target. reachedNow is true only on the tap that hits the target.
func (s *Session) Tap() (accepted, reachedNow bool) {
	if s.stopAtTarget && s.target > 0 && s.count >= s.target {
		return false, false
	}
	s.count++
	if s.target > 0 && !s.reached && s.count >= s.target {
		s.reached = true
		return true, true
	}
	return true, false
}

// Reset clears the count and the reached flag.
func (s *Session) Reset() {
	s.count = 0
	s.reached = false
}

// SetTarget changes the target and resets the session. Negative targets are
// treated as no target.
func (s *Session) SetTarget(target int) {
	if target < 0 {
		target = 0
	}
	s.target = target
	s.Reset()
}

// Progress returns count/target clamped to [0, 1].
func (s *Session) Progress() float64 {
	if s.target <= 0 {
		return 0
	}
	p := float64(s.count) / float64(s.target)
	return min(p, 1)
}

// Band returns the progress band of the session.
func (s *Session) Band() Band {
	return BandFor(s.count, s.target)
}

// BandFor classifies count against target.
func BandFor(count, target int) Band {
	if target <= 0 {
		return BandStart
	}
	p := float64(count) / float64(target)
	switch {
	case p >= 0.8:
		return BandEighty
	case p >= 0.6:
		return BandSixty
	case p >= 0.4:
		return BandForty
	default:
		return BandStart
	}
}
