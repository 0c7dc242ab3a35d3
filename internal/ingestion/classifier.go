package ingestion

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RowKind is the outcome of classifying a raw row.
type RowKind int

const (
	RowEmpty RowKind = iota
	RowInvalid
	RowValid
)

func (k RowKind) String() string {
	switch k {
	case RowEmpty:
		return "empty"
	case RowInvalid:
		return "invalid"
	case RowValid:
		return "valid"
	default:
		return fmt.Sprintf("RowKind(%d)", int(k))
	}
}

// Classification explains why a row is skipped, rejected or accepted.
type Classification struct {
	Kind     RowKind
	Missing  []string
	Problems []string
}

// Message renders the row error reported for an invalid row.
func (c Classification) Message(rowNumber int) string {
	parts := make([]string, 0, 1+len(c.Problems))
	if len(c.Missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(c.Missing, ", "))
	}
	parts = append(parts, c.Problems...)
	return fmt.Sprintf("Row %d: %s", rowNumber, strings.Join(parts, "; "))
}

var errNotNumeric = errors.New("not a number")

// Classifier applies the required-field policy and the numeric guard.
type Classifier struct {
	resolver *Resolver
	policy   RequiredPolicy
}

// NewClassifier builds a classifier for cfg's policy.
func NewClassifier(cfg Config, resolver *Resolver) *Classifier {
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyCompanyOrOrgNumber
	}
	return &Classifier{resolver: resolver, policy: policy}
}

// Classify decides whether row is empty, invalid or valid.
func (c *Classifier) Classify(row RawRow) Classification {
	if row.IsEmpty() {
		return Classification{Kind: RowEmpty}
	}

	_, hasCompany := c.resolver.Resolve(row, FieldCompany)
	_, hasOrgNumber := c.resolver.Resolve(row, FieldOrgNumber)
	_, hasStatus := c.resolver.Resolve(row, FieldStatus)

	var missing []string
	switch c.policy {
	case PolicyCompanyAndOrgNumber:
		if !hasCompany {
			missing = append(missing, FieldCompany.Label())
		}
		if !hasOrgNumber {
			missing = append(missing, FieldOrgNumber.Label())
		}
		if !hasStatus {
			missing = append(missing, FieldStatus.Label())
		}
	default:
		if !hasCompany && !hasOrgNumber {
			missing = append(missing, FieldCompany.Label()+" or "+FieldOrgNumber.Label())
		}
		if !hasStatus {
			missing = append(missing, FieldStatus.Label())
		}
		if _, hasDate := c.resolver.Resolve(row, FieldDate); !hasDate {
			missing = append(missing, FieldDate.Label())
		}
	}

	var problems []string
	for _, field := range []LogicalField{FieldKwp, FieldPpaPrice} {
		value, ok := c.resolver.Resolve(row, field)
		if !ok {
			continue
		}
		if _, err := parseNumber(value); err != nil {
			problems = append(problems, fmt.Sprintf("Invalid numeric value for %s: %q", field.Label(), strings.TrimSpace(stringify(value))))
		}
	}

	if len(missing) > 0 || len(problems) > 0 {
		return Classification{Kind: RowInvalid, Missing: missing, Problems: problems}
	}
	return Classification{Kind: RowValid}
}

// parseNumber accepts numeric cells and numeric text. Spaces are treated as
// thousands separators and a lone decimal comma is read as a decimal point.
func parseNumber(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		raw := strings.TrimSpace(stringify(value))
		raw = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\u00a0' {
				return -1
			}
			return r
		}, raw)
		if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
			raw = strings.Replace(raw, ",", ".", 1)
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, errNotNumeric
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	return f, nil
}
