package review

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FromRecord builds a Suggestion from a loosely typed record such as one
// element of a decoded chat reply.  Missing or falsy fields are defaulted:
//
//	id        → fallbackID
//	category  → "other"
//	severity  → "medium"
//	message   → ""
//	location  → {0, 0, 0}; non-object locations are ignored
//	autofix   → truthiness of the value
//
// Scalars (string, number, bool) are accepted wherever a string is expected.
// An error is returned only when a field holds a value that cannot be
// coerced, for example an array as the message.
func FromRecord(rec map[string]any, fallbackID string) (Suggestion, error) {
	id, err := stringOr(rec["id"], fallbackID)
	if err != nil {
		return Suggestion{}, fmt.Errorf("review: id: %w", err)
	}
	category, err := stringOr(rec["category"], CategoryOther)
	if err != nil {
		return Suggestion{}, fmt.Errorf("review: category: %w", err)
	}
	severity, err := stringOr(rec["severity"], SeverityMedium)
	if err != nil {
		return Suggestion{}, fmt.Errorf("review: severity: %w", err)
	}
	message, err := stringOr(rec["message"], "")
	if err != nil {
		return Suggestion{}, fmt.Errorf("review: message: %w", err)
	}
	loc, err := locationFrom(rec["location"])
	if err != nil {
		return Suggestion{}, fmt.Errorf("review: location: %w", err)
	}

	var opts []Option
	fix, err := optionalString(rec["suggested_fix"])
	if err != nil {
		return Suggestion{}, fmt.Errorf("review: suggested_fix: %w", err)
	}
	if fix != nil {
		opts = append(opts, WithSuggestedFix(*fix))
	}
	evidence, err := optionalString(rec["evidence"])
	if err != nil {
		return Suggestion{}, fmt.Errorf("review: evidence: %w", err)
	}
	if evidence != nil {
		opts = append(opts, WithEvidence(*evidence))
	}
	opts = append(opts, WithAutofix(truthy(rec["autofix"])))

	return New(id, category, severity, message, loc, opts...), nil
}

// truthy follows the usual dynamic-language rules: nil, false, zero numbers
// and empty strings or collections are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case *string:
		return x != nil && *x != ""
	case float64:
		return x != 0
	case float32:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// scalarString renders a scalar as text.  ok is false for composites.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", true
		}
		return *x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case json.Number:
		return x.String(), true
	default:
		return "", false
	}
}

func stringOr(v any, fallback string) (string, error) {
	if !truthy(v) {
		return fallback, nil
	}
	s, ok := scalarString(v)
	if !ok {
		return "", fmt.Errorf("cannot use %T as text", v)
	}
	return s, nil
}

func optionalString(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*string); ok {
		return p, nil
	}
	s, ok := scalarString(v)
	if !ok {
		return nil, fmt.Errorf("cannot use %T as text", v)
	}
	return &s, nil
}

func locationFrom(v any) (Location, error) {
	var m map[string]any
	switch x := v.(type) {
	case map[string]any:
		m = x
	case Location:
		return x, nil
	default:
		return Location{}, nil
	}

	var loc Location
	var err error
	if loc.ParagraphIndex, err = toInt(m["paragraph_index"]); err != nil {
		return Location{}, fmt.Errorf("paragraph_index: %w", err)
	}
	if loc.Start, err = toInt(m["start"]); err != nil {
		return Location{}, fmt.Errorf("start: %w", err)
	}
	if loc.End, err = toInt(m["end"]); err != nil {
		return Location{}, fmt.Errorf("end: %w", err)
	}
	return loc, nil
}

// toInt truncates numbers toward zero and parses decimal integer strings.
// nil counts as 0.
func toInt(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("non-finite number")
		}
		return int(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, err
		}
		return int(f), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", x)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}

//Personal.AI order the ending
