// Package scoring holds the pure primitives of the maturity engine: answer
// value normalization, goal-relative status classification, control code
// grammar and calendar month arithmetic.
package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LabelScores maps the Portuguese maturity scale labels to their numeric
// values. Seeded frameworks store answers either as numbers or as these
// labels.
var LabelScores = map[string]int{
	"Inicial":    1,
	"Repetido":   2,
	"Definido":   3,
	"Gerenciado": 4,
	"Otimizado":  5,
}

// ParseValue converts a raw answer payload into a decimal maturity value.
// Accepted shapes: nil / empty string (zero), any numeric type, a scale
// label, a mapping with a "value" key (recursed), a JSON-encoded string of
// any of the former, or a plain numeric string. Anything else is a
// ParseError.
func ParseValue(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case map[string]interface{}:
		inner, ok := v["value"]
		if !ok {
			return decimal.Zero, fmt.Errorf("mapping has no %q key", "value")
		}
		return ParseValue(inner)
	case string:
		return parseString(v)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type %T", raw)
	}
}

func parseString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if n, ok := LabelScores[s]; ok {
		return decimal.NewFromInt(int64(n)), nil
	}
	// JSON-encoded payloads come in from legacy imports as strings.
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return decimal.Zero, fmt.Errorf("malformed json value: %w", err)
		}
		if m, ok := decoded.(map[string]interface{}); ok {
			return ParseValue(m)
		}
		return decimal.Zero, fmt.Errorf("json value is not an object")
	}
	return decimal.NewFromString(s)
}

// Normalize is the total version of ParseValue: malformed payloads collapse
// to zero instead of aborting aggregation. Historical data quality makes
// this leniency deliberate.
func Normalize(raw interface{}) decimal.Decimal {
	v, err := ParseValue(raw)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// Round1 rounds half-up to one decimal place, the precision every displayed
// average uses.
func Round1(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}

// Mean returns the unweighted arithmetic mean of vals, or zero for an empty
// slice.
func Mean(vals []decimal.Decimal) decimal.Decimal {
	if len(vals) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range vals {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(vals))))
}
