package ingestion

import (
	"fmt"
	"strings"
	"time"
)

// LogicalField identifies one business field of a lead row.
type LogicalField int

const (
	FieldDate LogicalField = iota
	FieldCompany
	FieldOrgNumber
	FieldStatus
	FieldSource
	FieldSeller
	FieldContact
	FieldIsExistingCustomer
	FieldKwp
	FieldPpaPrice
)

// AllFields lists every logical field in canonical order.
var AllFields = []LogicalField{
	FieldDate,
	FieldCompany,
	FieldOrgNumber,
	FieldStatus,
	FieldSource,
	FieldSeller,
	FieldContact,
	FieldIsExistingCustomer,
	FieldKwp,
	FieldPpaPrice,
}

var fieldKeys = map[LogicalField]string{
	FieldDate:               "date",
	FieldCompany:            "company",
	FieldOrgNumber:          "org_number",
	FieldStatus:             "status",
	FieldSource:             "source",
	FieldSeller:             "seller",
	FieldContact:            "contact",
	FieldIsExistingCustomer: "existing_customer",
	FieldKwp:                "kwp",
	FieldPpaPrice:           "ppa_price",
}

var fieldLabels = map[LogicalField]string{
	FieldDate:               "Date",
	FieldCompany:            "Company/Firmanavn",
	FieldOrgNumber:          "Org.nr",
	FieldStatus:             "Status",
	FieldSource:             "Kanal",
	FieldSeller:             "Ansvarlig selger",
	FieldContact:            "Kontaktperson",
	FieldIsExistingCustomer: "Eksisterende kunde",
	FieldKwp:                "kWp",
	FieldPpaPrice:           "PPA pris",
}

// Key is the stable configuration key of the field.
func (f LogicalField) Key() string {
	if key, ok := fieldKeys[f]; ok {
		return key
	}
	return fmt.Sprintf("field_%d", int(f))
}

// Label is the human readable name used in row error messages.
func (f LogicalField) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return f.Key()
}

func (f LogicalField) String() string {
	return f.Key()
}

// ParseLogicalField maps a configuration key back to its field.
func ParseLogicalField(key string) (LogicalField, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for field, candidate := range fieldKeys {
		if candidate == key {
			return field, nil
		}
	}
	return 0, fmt.Errorf("unknown lead field %q", key)
}

// RequiredPolicy selects which fields a row must carry to be imported.
type RequiredPolicy string

const (
	// PolicyCompanyOrOrgNumber requires Company or OrgNumber, plus Status and Date.
	PolicyCompanyOrOrgNumber RequiredPolicy = "company_or_org_number"
	// PolicyCompanyAndOrgNumber requires Company, OrgNumber and Status; Date is optional.
	PolicyCompanyAndOrgNumber RequiredPolicy = "company_and_org_number"
)

// ParseRequiredPolicy validates a policy name from configuration.
func ParseRequiredPolicy(value string) (RequiredPolicy, error) {
	switch RequiredPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyCompanyOrOrgNumber:
		return PolicyCompanyOrOrgNumber, nil
	case PolicyCompanyAndOrgNumber:
		return PolicyCompanyAndOrgNumber, nil
	default:
		return "", fmt.Errorf("unknown required field policy %q", value)
	}
}

// Config holds the header aliases and defaults used to turn rows into leads.
// Treat it as immutable: the With* methods return modified copies.
type Config struct {
	Aliases          map[LogicalField][]string
	DefaultSource    string
	DefaultSeller    string
	AffirmativeToken string
	Policy           RequiredPolicy
	Now              func() time.Time
}

// DefaultConfig returns the alias table for the Norwegian and English headers seen in lead sheets.
func DefaultConfig() Config {
	return Config{
		Aliases: map[LogicalField][]string{
			FieldDate:               {"Dato", "Date", "dato"},
			FieldCompany:            {"Firmanavn", "Company", "firmanavn", "Firma"},
			FieldOrgNumber:          {"Org.nr", "Org nr", "Organization Number", "org.nr", "org nr", "Orgnr", "orgnr"},
			FieldStatus:             {"Status", "status"},
			FieldSource:             {"Kanal", "Channel", "Source", "kanal", "channel", "source"},
			FieldSeller:             {"Ansvarlig selger", "Responsible Seller", "Seller", "ansvarlig selger", "seller"},
			FieldContact:            {"Kontaktperson", "Contact Person", "Contact", "kontaktperson", "contact"},
			FieldIsExistingCustomer: {"Eksisterende kunde", "Existing Customer", "eksisterende kunde", "existing customer"},
			FieldKwp:                {"kWp", "KWP", "kwp"},
			FieldPpaPrice:           {"PPA pris", "PPA Price", "ppa pris", "ppa price"},
		},
		DefaultSource:    "Nettside",
		DefaultSeller:    "Unknown",
		AffirmativeToken: "ja",
		Policy:           PolicyCompanyOrOrgNumber,
		Now:              time.Now,
	}
}

// WithAliases returns a copy of the config where field resolves through aliases.
func (c Config) WithAliases(field LogicalField, aliases ...string) Config {
	out := c.clone()
	out.Aliases[field] = append([]string(nil), aliases...)
	return out
}

// WithPolicy returns a copy of the config using policy.
func (c Config) WithPolicy(policy RequiredPolicy) Config {
	out := c.clone()
	out.Policy = policy
	return out
}

// WithClock returns a copy of the config reading the ingestion date from now.
func (c Config) WithClock(now func() time.Time) Config {
	out := c.clone()
	out.Now = now
	return out
}

func (c Config) clone() Config {
	out := c
	out.Aliases = make(map[LogicalField][]string, len(c.Aliases))
	for field, aliases := range c.Aliases {
		out.Aliases[field] = append([]string(nil), aliases...)
	}
	return out
}

func (c Config) today() string {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	return now().Format("2006-01-02")
}
