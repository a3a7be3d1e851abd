package term

// Rule is one stored clause: a head and an optional body.
// A nil Body means the clause is a fact.
//
// Rules are immutable once stored. The engine never solves against a
// rule's own variables; it renames them fresh at each selection.
type Rule struct {
	Head Term
	Body Term
}

// Indicator returns the predicate indicator of the rule head.
// ok is false when the head is not callable (variable or number).
func (r Rule) Indicator() (Indicator, bool) {
	return IndicatorOf(r.Head)
}
