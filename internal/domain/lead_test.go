package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func validLead() Lead {
	return Lead{
		Date:      "2024-03-01",
		Company:   "Acme AS",
		OrgNumber: "999",
		Status:    "Ny",
		Source:    "Nettside",
		Seller:    "Unknown",
	}
}

func TestLeadValidate(t *testing.T) {
	if err := validLead().Validate(); err != nil {
		t.Fatalf("expected valid lead, got %v", err)
	}

	lead := validLead()
	lead.Company = "  "
	lead.Status = ""
	var validationErr *ValidationError
	if err := lead.Validate(); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !reflect.DeepEqual(validationErr.Fields, []string{"company", "status"}) {
		t.Fatalf("unexpected fields: %v", validationErr.Fields)
	}

	lead = validLead()
	lead.Date = "01.03.2024"
	if err := lead.Validate(); !errors.As(err, &validationErr) || validationErr.Fields[0] != "date" {
		t.Fatalf("expected date error, got %v", err)
	}
}

func TestMergeFromKeepsStoredValuesForEmptyInput(t *testing.T) {
	contact := "Kari"
	stored := validLead()
	stored.ID = uuid.New()
	stored.CreatedAt = time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	stored.Contact = &contact
	stored.Kwp = FloatPtr(50)
	stored.IsExistingCustomer = true

	empty := ""
	incoming := Lead{
		OrgNumber: "999",
		Status:    "Kvalifisert",
		Contact:   &empty,
		PpaPrice:  FloatPtr(0.42),
	}

	merged := stored.MergeFrom(incoming)
	if merged.ID != stored.ID || !merged.CreatedAt.Equal(stored.CreatedAt) {
		t.Fatalf("identity must be kept: %+v", merged)
	}
	if merged.Company != "Acme AS" || merged.Status != "Kvalifisert" {
		t.Fatalf("unexpected string merge: %+v", merged)
	}
	if merged.Contact == nil || *merged.Contact != "Kari" {
		t.Fatalf("empty contact must not blank the stored one: %v", merged.Contact)
	}
	if merged.Kwp == nil || *merged.Kwp != 50 || merged.PpaPrice == nil || *merged.PpaPrice != 0.42 {
		t.Fatalf("unexpected numeric merge: kwp=%v ppa=%v", merged.Kwp, merged.PpaPrice)
	}
	if merged.IsExistingCustomer {
		t.Fatalf("imported flag must always overwrite")
	}

	*merged.PpaPrice = 1
	if *incoming.PpaPrice != 0.42 {
		t.Fatalf("merge must copy pointers, incoming was mutated")
	}
}

func TestStringPtr(t *testing.T) {
	if StringPtr("   ") != nil {
		t.Fatalf("blank string should map to nil")
	}
	if got := StringPtr(" Ola "); got == nil || *got != "Ola" {
		t.Fatalf("expected trimmed value, got %v", got)
	}
}
