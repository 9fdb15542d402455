package verdict

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Rule maps a set of page matchers to a verdict. All matchers must hold.
type Rule struct {
	ID       string          `json:"id"`
	Verdict  string          `json:"verdict"`
	Reason   string          `json:"reason"`
	Matchers []MatcherConfig `json:"matchers"`
}

// MatcherConfig describes one condition over the rendered page.
type MatcherConfig struct {
	// Type is "text" (visible text) or "source" (serialized DOM).
	Type       string `json:"type"`
	Pattern    string `json:"pattern"`
	Contains   string `json:"contains"`
	IgnoreCase bool   `json:"ignoreCase"`
}

// RuleSet keeps rules compiled and ordered by priority: every rejecting rule
// is evaluated before any accepting one.
type RuleSet struct {
	rules []compiledRule
}

type compiledRule struct {
	raw      Rule
	verdict  Verdict
	matchers []matcherFunc
}

type matcherFunc func(doc *document) bool

func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read verdict rules")
	}
	return ParseRuleSet(data)
}

func ParseRuleSet(data []byte) (*RuleSet, error) {
	var list []Rule
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse verdict rules: %w", err)
	}
	return compileRules(list)
}

func compileRules(list []Rule) (*RuleSet, error) {
	rs := &RuleSet{}
	for _, rule := range list {
		if rule.ID == "" {
			return nil, errors.New("rule missing id")
		}
		compiled, err := compileRule(rule)
		if err != nil {
			return nil, fmt.Errorf("compile rule %s: %w", rule.ID, err)
		}
		rs.rules = append(rs.rules, compiled)
	}
	rs.order()
	return rs, nil
}

func compileRule(rule Rule) (compiledRule, error) {
	v, ok := parseVerdict(rule.Verdict)
	if !ok {
		return compiledRule{}, fmt.Errorf("unknown verdict %q", rule.Verdict)
	}
	if len(rule.Matchers) == 0 {
		return compiledRule{}, errors.New("rule has no matchers")
	}
	cr := compiledRule{raw: rule, verdict: v}
	for _, cfg := range rule.Matchers {
		mf, err := buildMatcher(cfg)
		if err != nil {
			return compiledRule{}, err
		}
		cr.matchers = append(cr.matchers, mf)
	}
	return cr, nil
}

func buildMatcher(cfg MatcherConfig) (matcherFunc, error) {
	re, err := compilePattern(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.Type {
	case "text":
		return func(doc *document) bool {
			return re.MatchString(doc.text())
		}, nil
	case "source":
		return func(doc *document) bool {
			return re.MatchString(doc.page.Source)
		}, nil
	default:
		return nil, fmt.Errorf("unknown matcher type %s", cfg.Type)
	}
}

func compilePattern(cfg MatcherConfig) (*regexp.Regexp, error) {
	if cfg.Pattern != "" {
		if cfg.IgnoreCase {
			return regexp.Compile("(?i)" + cfg.Pattern)
		}
		return regexp.Compile(cfg.Pattern)
	}
	if cfg.Contains == "" {
		return nil, errors.New("empty matcher pattern")
	}
	pattern := regexp.QuoteMeta(cfg.Contains)
	if cfg.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// Merge appends the rules of other and restores priority order.
func (rs *RuleSet) Merge(other *RuleSet) {
	if other == nil {
		return
	}
	rs.rules = append(rs.rules, other.rules...)
	rs.order()
}

func (rs *RuleSet) order() {
	sort.SliceStable(rs.rules, func(i, j int) bool {
		return rs.rules[i].verdict == Rejected && rs.rules[j].verdict != Rejected
	})
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

func (rs *RuleSet) match(doc *document) (compiledRule, bool) {
	for _, rule := range rs.rules {
		matched := true
		for _, fn := range rule.matchers {
			if !fn(doc) {
				matched = false
				break
			}
		}
		if matched {
			return rule, true
		}
	}
	return compiledRule{}, false
}
