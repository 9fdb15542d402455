package verdict

// Verdict is the outcome of classifying one rendered redeem page.
type Verdict int

const (
	Rejected Verdict = iota
	Accepted
	// AcceptedLowConfidence means no invalid marker and no acceptance signal
	// were found. It is reported as accepted but needs a manual check.
	AcceptedLowConfidence
)

func (v Verdict) String() string {
	switch v {
	case Rejected:
		return "rejected"
	case Accepted:
		return "accepted"
	case AcceptedLowConfidence:
		return "low-confidence"
	default:
		return "unknown"
	}
}

// IsAccepted reports whether the token should be recorded.
func (v Verdict) IsAccepted() bool {
	return v == Accepted || v == AcceptedLowConfidence
}

func parseVerdict(raw string) (Verdict, bool) {
	switch raw {
	case "rejected":
		return Rejected, true
	case "accepted":
		return Accepted, true
	default:
		return Rejected, false
	}
}

// Page is the document produced by a rendered fetch.
type Page struct {
	URL string
	// Source is the serialized DOM after scripts ran.
	Source string
	// Text is the visible body text. When empty it is derived from Source.
	Text string
}

// Result carries the verdict and the rule that produced it.
type Result struct {
	Verdict Verdict `json:"verdict"`
	RuleID  string  `json:"rule,omitempty"`
	Reason  string  `json:"reason"`
}
