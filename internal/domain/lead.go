package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format stored on leads.
const DateLayout = "2006-01-02"

// Lead represents a sales prospect keyed by its organisation number.
type Lead struct {
	ID                 uuid.UUID `json:"id"`
	Date               string    `json:"date"`
	Company            string    `json:"company"`
	OrgNumber          string    `json:"org_number"`
	Status             string    `json:"status"`
	Source             string    `json:"source"`
	Seller             string    `json:"seller"`
	Contact            *string   `json:"contact,omitempty"`
	IsExistingCustomer bool      `json:"is_existing_customer"`
	Kwp                *float64  `json:"kwp,omitempty"`
	PpaPrice           *float64  `json:"ppa_price,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsPersisted reports whether the store has assigned an identifier.
func (l Lead) IsPersisted() bool {
	return l.ID != uuid.Nil
}

// Validate checks the invariants every stored lead must satisfy.
func (l Lead) Validate() error {
	var missing []string
	if strings.TrimSpace(l.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(l.OrgNumber) == "" {
		missing = append(missing, "org_number")
	}
	if strings.TrimSpace(l.Status) == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "required"}
	}
	if _, err := time.Parse(DateLayout, l.Date); err != nil {
		return &ValidationError{Fields: []string{"date"}, Message: "must be YYYY-MM-DD"}
	}
	return nil
}

// MergeFrom overlays every non-empty field of incoming onto l. Empty strings and nil
// pointers in incoming never blank out a stored value. Identity and creation time
// are always kept from l.
func (l Lead) MergeFrom(incoming Lead) Lead {
	merged := l
	if v := incoming.Date; v != "" {
		merged.Date = v
	}
	if v := incoming.Company; v != "" {
		merged.Company = v
	}
	if v := incoming.OrgNumber; v != "" {
		merged.OrgNumber = v
	}
	if v := incoming.Status; v != "" {
		merged.Status = v
	}
	if v := incoming.Source; v != "" {
		merged.Source = v
	}
	if v := incoming.Seller; v != "" {
		merged.Seller = v
	}
	if incoming.Contact != nil && *incoming.Contact != "" {
		merged.Contact = cloneString(incoming.Contact)
	}
	// Booleans are never "empty"; an imported value always wins.
	merged.IsExistingCustomer = incoming.IsExistingCustomer
	if incoming.Kwp != nil {
		merged.Kwp = cloneFloat(incoming.Kwp)
	}
	if incoming.PpaPrice != nil {
		merged.PpaPrice = cloneFloat(incoming.PpaPrice)
	}
	return merged
}

// ValidationError describes fields that violate lead invariants.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, ", ") + ": " + e.Message
}

// StringPtr returns a pointer to a trimmed copy of s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 {
	return &f
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
