package ingestion

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/leadflow/internal/domain"

	"github.com/xuri/excelize/v2"
)

var (
	dateLayouts = []string{
		domain.DateLayout,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"02.01.2006",
		"2.1.2006",
		"02/01/2006",
		"2/1/2006",
		"2006/01/02",
		"01/02/2006",
		"02.01.06",
	}

	serialPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Excel serials outside this range are not calendar dates excelize can convert.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// Normalizer turns a row that passed classification into a lead.
type Normalizer struct {
	resolver         *Resolver
	defaultSource    string
	defaultSeller    string
	affirmativeToken string
	today            func() string
}

// NewNormalizer builds a normalizer from cfg's defaults and clock.
func NewNormalizer(cfg Config, resolver *Resolver) *Normalizer {
	return &Normalizer{
		resolver:         resolver,
		defaultSource:    cfg.DefaultSource,
		defaultSeller:    cfg.DefaultSeller,
		affirmativeToken: strings.ToLower(strings.TrimSpace(cfg.AffirmativeToken)),
		today:            cfg.today,
	}
}

// Normalize builds the canonical lead for row. It performs no I/O.
func (n *Normalizer) Normalize(row RawRow) domain.Lead {
	lead := domain.Lead{
		Date:   n.today(),
		Source: n.defaultSource,
		Seller: n.defaultSeller,
	}

	if value, ok := n.resolver.Resolve(row, FieldDate); ok {
		if date, ok := parseDate(value); ok {
			lead.Date = date.Format(domain.DateLayout)
		}
	}

	company, hasCompany := n.resolver.ResolveString(row, FieldCompany)
	orgNumber, hasOrgNumber := n.resolver.ResolveString(row, FieldOrgNumber)
	switch {
	case hasCompany && !hasOrgNumber:
		orgNumber = company
	case hasOrgNumber && !hasCompany:
		company = orgNumber
	}
	lead.Company = company
	lead.OrgNumber = orgNumber

	lead.Status, _ = n.resolver.ResolveString(row, FieldStatus)
	if source, ok := n.resolver.ResolveString(row, FieldSource); ok {
		lead.Source = source
	}
	if seller, ok := n.resolver.ResolveString(row, FieldSeller); ok {
		lead.Seller = seller
	}
	if contact, ok := n.resolver.ResolveString(row, FieldContact); ok {
		lead.Contact = domain.StringPtr(contact)
	}
	if existing, ok := n.resolver.ResolveString(row, FieldIsExistingCustomer); ok {
		lead.IsExistingCustomer = strings.ToLower(existing) == n.affirmativeToken
	}

	lead.Kwp = n.number(row, FieldKwp)
	lead.PpaPrice = n.number(row, FieldPpaPrice)
	return lead
}

func (n *Normalizer) number(row RawRow, field LogicalField) *float64 {
	value, ok := n.resolver.Resolve(row, field)
	if !ok {
		return nil
	}
	f, err := parseNumber(value)
	if err != nil {
		return nil
	}
	return domain.FloatPtr(f)
}

// parseDate reads a date cell. Numbers are treated as Excel date serials.
func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v, true
	case float64:
		return excelSerialToTime(v)
	case int:
		return excelSerialToTime(float64(v))
	case int64:
		return excelSerialToTime(float64(v))
	}

	raw := strings.TrimSpace(stringify(value))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	if serialPattern.MatchString(raw) {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			return excelSerialToTime(serial)
		}
	}
	return time.Time{}, false
}

func excelSerialToTime(serial float64) (time.Time, bool) {
	if serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
