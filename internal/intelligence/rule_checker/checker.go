// Package rule_checker implements the deterministic heuristic detector.  It
// scans paragraphs with a fixed, ordered list of rules and emits
// review.Suggestions numbered H-0001, H-0002, … across all rules.
package rule_checker

import (
	"fmt"

	"github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
)

// IDPrefix marks suggestions produced by this package.
const IDPrefix = "H-"

// Checker runs rules over paragraphs.  It holds no per-call state and is
// safe for concurrent use.
type Checker struct {
	rules  []Rule
	logger logging.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithRules replaces the rule list.  The given order is the execution order.
func WithRules(rules ...Rule) Option {
	return func(c *Checker) { c.rules = rules }
}

// NewChecker builds a Checker with DefaultRules unless overridden.
func NewChecker(logger logging.Logger, opts ...Option) *Checker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Checker{rules: DefaultRules(), logger: logger.Named("rule_checker")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns the rules in execution order.
func (c *Checker) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Check applies every rule to every paragraph.  Each rule finishes all
// paragraphs before the next rule starts.  IDs come from a single counter
// starting at 1.
func (c *Checker) Check(paragraphs []string) []review.Suggestion {
	var out []review.Suggestion
	seq := 0
	for _, rule := range c.rules {
		before := len(out)
		for i, text := range paragraphs {
			for _, f := range rule.Check(i, text) {
				seq++
				var opts []review.Option
				if f.Fix != nil {
					opts = append(opts, review.WithSuggestedFix(*f.Fix))
				}
				out = append(out, review.New(
					fmt.Sprintf("%s%04d", IDPrefix, seq),
					f.Category, f.Severity, f.Message, f.Location, opts...,
				))
			}
		}
		c.logger.Debug("rule finished",
			logging.String("rule", rule.ID),
			logging.Int("findings", len(out)-before))
	}
	return out
}

// Check runs DefaultRules over paragraphs without logging.
func Check(paragraphs []string) []review.Suggestion {
	return NewChecker(nil).Check(paragraphs)
}

//Personal.AI order the ending
