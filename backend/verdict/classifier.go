package verdict

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Classifier turns a rendered page into a verdict. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	rules *RuleSet
}

func NewClassifier(rules *RuleSet) *Classifier {
	if rules == nil {
		rules = DefaultRuleSet("", nil)
	}
	return &Classifier{rules: rules}
}

// Classify evaluates the rules in priority order. A page that matches no rule
// is accepted with low confidence: the invalid marker is the only negative
// signal the page offers.
func (c *Classifier) Classify(page Page) Result {
	doc := &document{page: page}
	if rule, ok := c.rules.match(doc); ok {
		return Result{Verdict: rule.verdict, RuleID: rule.raw.ID, Reason: rule.raw.Reason}
	}
	return Result{Verdict: AcceptedLowConfidence, Reason: "Potentially valid code (no error message)"}
}

// ClassifyText classifies plain document text.
func (c *Classifier) ClassifyText(text string) Result {
	return c.Classify(Page{Source: text, Text: text})
}

type document struct {
	page      Page
	extracted bool
	visible   string
}

func (d *document) text() string {
	if d.page.Text != "" {
		return d.page.Text
	}
	if !d.extracted {
		d.visible = extractText(d.page.Source)
		d.extracted = true
	}
	return d.visible
}

// extractText returns the unescaped text nodes of an HTML document, skipping
// script and style bodies.
func extractText(source string) string {
	if source == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(source))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); a == atom.Script || a == atom.Style {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if t := strings.TrimSpace(string(z.Text())); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
	}
}
