package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// LeadSnapshot flattens the user-editable fields of a lead into comparable strings.
// Store-managed fields (id, timestamps) are excluded.
func LeadSnapshot(l Lead) map[string]string {
	return map[string]string{
		"date":                 l.Date,
		"company":              l.Company,
		"org_number":           l.OrgNumber,
		"status":               l.Status,
		"source":               l.Source,
		"seller":               l.Seller,
		"contact":              formatOptionalString(l.Contact),
		"is_existing_customer": strconv.FormatBool(l.IsExistingCustomer),
		"kwp":                  formatOptionalFloat(l.Kwp),
		"ppa_price":            formatOptionalFloat(l.PpaPrice),
	}
}

// ChangedFields lists, in sorted order, the fields whose value differs between base and target.
func ChangedFields(base, target Lead) []string {
	before := LeadSnapshot(base)
	after := LeadSnapshot(target)

	changed := []string{}
	for key, value := range after {
		if before[key] != value {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

// EqualContent reports whether two leads carry the same user-editable data.
func EqualContent(a, b Lead) bool {
	return len(ChangedFields(a, b)) == 0
}

func formatOptionalString(s *string) string {
	if s == nil {
		return "null"
	}
	return strconv.Quote(*s)
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return "null"
	}
	return fmt.Sprintf("%g", *f)
}
