package rule_checker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/meisai-checker/internal/domain/review"
)

// Rule identifiers, in execution order.
const (
	RuleRepeatedPunctuation = "repeated_punctuation"
	RuleUnbalancedBrackets  = "unbalanced_brackets"
	RuleIrregularSpacing    = "irregular_spacing"
)

// Finding is what a rule reports for one paragraph.  The Checker turns it
// into a review.Suggestion and assigns the ID.
type Finding struct {
	Category string
	Severity string
	Message  string
	Location review.Location
	Fix      *string
}

// Rule is one heuristic check applied to a single paragraph.
type Rule struct {
	ID          string
	Description string
	Check       func(index int, text string) []Finding
}

// DefaultRules returns the built-in rules in the order they run.  The order
// is part of the output contract: IDs are numbered across rules in this order.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          RuleRepeatedPunctuation,
			Description: "連続した句読点（。、）を検出",
			Check:       checkRepeatedPunctuation,
		},
		{
			ID:          RuleUnbalancedBrackets,
			Description: "段落内の括弧の開閉数の不一致を検出",
			Check:       checkUnbalancedBrackets,
		},
		{
			ID:          RuleIrregularSpacing,
			Description: "日本語の文字間に挟まった空白を検出",
			Check:       checkIrregularSpacing,
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// repeated_punctuation
// ─────────────────────────────────────────────────────────────────────────────

var repeatedPunctuation = regexp.MustCompile(`[。、]{2,}`)

func checkRepeatedPunctuation(index int, text string) []Finding {
	var out []Finding
	for _, m := range repeatedPunctuation.FindAllStringIndex(text, -1) {
		first, _ := utf8.DecodeRuneInString(text[m[0]:])
		fix := string(first)
		out = append(out, Finding{
			Category: review.CategoryTypo,
			Severity: review.SeverityLow,
			Message:  "句読点が連続しています",
			Location: spanOf(index, text, m),
			Fix:      &fix,
		})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// unbalanced_brackets
// ─────────────────────────────────────────────────────────────────────────────

// bracketPairs are checked in this order, one finding per mismatched pair.
var bracketPairs = [][2]string{
	{"(", ")"},
	{"（", "）"},
	{"[", "]"},
	{"「", "」"},
}

func checkUnbalancedBrackets(index int, text string) []Finding {
	var out []Finding
	for _, pair := range bracketPairs {
		opening, closing := pair[0], pair[1]
		if strings.Count(text, opening) == strings.Count(text, closing) {
			continue
		}
		end := utf8.RuneCountInString(text) - 1
		if end < 0 {
			end = 0
		}
		out = append(out, Finding{
			Category: review.CategoryStyle,
			Severity: review.SeverityMedium,
			Message:  "括弧の数が一致しません: " + opening + closing,
			Location: review.Location{ParagraphIndex: index, Start: 0, End: end},
		})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// irregular_spacing
// ─────────────────────────────────────────────────────────────────────────────

// inlineSpace is the Unicode whitespace set, including U+3000, minus the
// line boundaries (\n \r \v \f \x1c-\x1e \x85 U+2028 U+2029).  A soft
// line break inside a paragraph is not spacing between characters.
const inlineSpace = `[\t \x{1f}\x{a0}\x{1680}\x{2000}-\x{200a}\x{202f}\x{205f}\x{3000}]`

var irregularSpacing = regexp.MustCompile(
	`([ぁ-んァ-ヶ一-龥）」》】・])` + inlineSpace + `+([ぁ-んァ-ヶ一-龥（「《【・])`,
)

func checkIrregularSpacing(index int, text string) []Finding {
	var out []Finding
	for _, m := range irregularSpacing.FindAllStringIndex(text, -1) {
		out = append(out, Finding{
			Category: review.CategoryStyle,
			Severity: review.SeverityLow,
			Message:  "日本語間の不自然な空白",
			Location: spanOf(index, text, m),
		})
	}
	return out
}

// spanOf converts a regexp byte span to a rune-offset Location.
func spanOf(index int, text string, m []int) review.Location {
	start := utf8.RuneCountInString(text[:m[0]])
	end := start + utf8.RuneCountInString(text[m[0]:m[1]])
	return review.Location{ParagraphIndex: index, Start: start, End: end}
}

//Personal.AI order the ending
