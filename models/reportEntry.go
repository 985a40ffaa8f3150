package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportEntry is a revenue ledger row used for financial reporting. It is a
// point-in-time snapshot of the request taken when the request became ready:
// document type, requestor, purpose, price and status are frozen at creation
// and never re-synced with later edits to the request. Rows are created and
// deleted (by reference number), never updated in place.
type ReportEntry struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	ReferenceNo  string          `json:"reference_no" gorm:"size:64;uniqueIndex;not null"`
	DocumentType string          `json:"document_type" gorm:"size:100;not null"`
	Requestor    string          `json:"requestor" gorm:"size:150;not null"`
	Purpose      string          `json:"purpose" gorm:"size:255"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Status       RequestStatus   `json:"status" gorm:"type:varchar(10);not null"`
	CreatedAt    time.Time       `json:"created_at"`
}
