// Package pricing maps document-type labels to the barangay fee schedule.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Fees in PHP. Clearances are charged higher than plain certifications;
// anything the schedule does not recognize falls back to the certification fee.
var (
	FeeClearance     = decimal.NewFromInt(40)
	FeeCertification = decimal.NewFromInt(30)
)

// Fee resolves the fee for a document type. The match is a case-insensitive
// substring check, so catalog variants like "Barangay Clearance" and
// "Business Clearance" all resolve the same way. Fee is total and
// deterministic: it never fails and has no hidden state, so callers may
// resolve at display time and again at ledger time and get the same value.
func Fee(documentType string) decimal.Decimal {
	t := strings.ToLower(documentType)
	switch {
	case strings.Contains(t, "clearance"):
		return FeeClearance
	case strings.Contains(t, "certification"), strings.Contains(t, "certificate"):
		return FeeCertification
	default:
		return FeeCertification
	}
}
