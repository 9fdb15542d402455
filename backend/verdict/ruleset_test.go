package verdict

import "testing"

func TestParseRuleSetOrdersRejectingRulesFirst(t *testing.T) {
	raw := []byte(`[
		{
			"id": "accept-invite",
			"verdict": "accepted",
			"matchers": [
				{"type": "text", "contains": "invite", "ignoreCase": true}
			]
		},
		{
			"id": "expired",
			"verdict": "rejected",
			"reason": "Expired code",
			"matchers": [
				{"type": "text", "contains": "expired"}
			]
		}
	]`)
	rs, err := ParseRuleSet(raw)
	if err != nil {
		t.Fatalf("ParseRuleSet failed: %v", err)
	}
	res := NewClassifier(rs).ClassifyText("Your invite has expired")
	if res.RuleID != "expired" {
		t.Fatalf("expected rule expired, got %q", res.RuleID)
	}
	if res.Verdict != Rejected {
		t.Fatalf("expected rejected, got %s", res.Verdict)
	}
}

func TestParseRuleSetInvalidRule(t *testing.T) {
	raw := []byte(`[{"id": "", "verdict": "accepted", "matchers": []}]`)
	if _, err := ParseRuleSet(raw); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestParseRuleSetUnknownVerdict(t *testing.T) {
	raw := []byte(`[{"id": "x", "verdict": "maybe", "matchers": [{"type": "text", "contains": "a"}]}]`)
	if _, err := ParseRuleSet(raw); err == nil {
		t.Fatalf("expected error for unknown verdict")
	}
}

func TestParseRuleSetUnknownMatcher(t *testing.T) {
	raw := []byte(`[{"id": "x", "verdict": "accepted", "matchers": [{"type": "header", "contains": "a"}]}]`)
	if _, err := ParseRuleSet(raw); err == nil {
		t.Fatalf("expected error for unknown matcher type")
	}
}

func TestMergeKeepsMarkerPriority(t *testing.T) {
	extra, err := ParseRuleSet([]byte(`[
		{"id": "club", "verdict": "accepted", "matchers": [{"type": "source", "pattern": "club$"}]}
	]`))
	if err != nil {
		t.Fatalf("ParseRuleSet failed: %v", err)
	}
	rs := DefaultRuleSet("", nil)
	before := rs.Len()
	rs.Merge(extra)
	if rs.Len() != before+1 {
		t.Fatalf("expected %d rules, got %d", before+1, rs.Len())
	}
	c := NewClassifier(rs)
	if res := c.ClassifyText(DefaultInvalidMarker + " join the club"); res.Verdict != Rejected {
		t.Fatalf("expected rejected, got %s", res.Verdict)
	}
	if res := c.ClassifyText("join the club"); res.RuleID != "club" {
		t.Fatalf("expected rule club, got %q", res.RuleID)
	}
}
