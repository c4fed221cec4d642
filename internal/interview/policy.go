package interview

// Policy decides when an interview is allowed to complete naturally.
//
// Completion requires all three thresholds at once: the soft limit on
// total questions AND both minimums. The minimums force breadth
// (standalone) and depth (follow-up); the soft limit alone never ends an
// interview, so a provider that starves one category keeps the session
// going past the limit until the minimum is met.
type Policy struct {
	SoftLimit     int // total questions that, with minimums met, triggers completion
	MinStandalone int // required standalone questions
	MinFollowUp   int // required follow-up questions
}

// DefaultPolicy returns the production thresholds: 10 total, at least
// 6 standalone and 2 follow-up.
func DefaultPolicy() Policy {
	return Policy{SoftLimit: 10, MinStandalone: 6, MinFollowUp: 2}
}

// Satisfied reports whether the given counters meet the completion
// criteria. Pure function of the counters so it can be tested without
// generation side effects.
func (p Policy) Satisfied(total, standalone, followUp int) bool {
	return total >= p.SoftLimit && standalone >= p.MinStandalone && followUp >= p.MinFollowUp
}

// Exceeded reports whether the counters have gone past the soft limit
// with both minimums met. Checked after generating a question: a
// generation that overshoots the limits means the fresh question must be
// discarded instead of shown, since its answer would never be needed.
// A question that lands exactly on the soft limit is still shown; the
// session then completes when its answer is committed.
func (p Policy) Exceeded(total, standalone, followUp int) bool {
	return total > p.SoftLimit && standalone >= p.MinStandalone && followUp >= p.MinFollowUp
}
