package verdict

// DefaultInvalidMarker is the message the redeem page renders for unknown codes.
const DefaultInvalidMarker = "Uh oh! This code is invalid."

// DefaultAcceptSignals are matched case-insensitively against the page.
var DefaultAcceptSignals = []string{"sign up", "welcome", "register"}

// DefaultRuleSet builds the stock rules around the given invalid marker.
// The marker is checked in the visible text first and then in the page source.
func DefaultRuleSet(invalidMarker string, signals []string) *RuleSet {
	if invalidMarker == "" {
		invalidMarker = DefaultInvalidMarker
	}
	if signals == nil {
		signals = DefaultAcceptSignals
	}
	rules := []Rule{
		{
			ID:       "invalid-marker-text",
			Verdict:  "rejected",
			Reason:   "Invalid code",
			Matchers: []MatcherConfig{{Type: "text", Contains: invalidMarker}},
		},
		{
			ID:       "invalid-marker-source",
			Verdict:  "rejected",
			Reason:   "Invalid code",
			Matchers: []MatcherConfig{{Type: "source", Contains: invalidMarker}},
		},
	}
	for _, signal := range signals {
		if signal == "" {
			continue
		}
		rules = append(rules, Rule{
			ID:       "accept-" + signal,
			Verdict:  "accepted",
			Reason:   "Valid code found",
			Matchers: []MatcherConfig{{Type: "source", Contains: signal, IgnoreCase: true}},
		})
	}

	rs, err := compileRules(rules)
	if err != nil {
		return &RuleSet{}
	}
	return rs
}
