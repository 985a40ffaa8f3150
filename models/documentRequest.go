package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the lifecycle state of a document request. The database
// column carries a CHECK constraint so no other value is representable.
type RequestStatus string

const (
	StatusPending RequestStatus = "pending"
	StatusReady   RequestStatus = "ready"
	StatusReject  RequestStatus = "reject"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusReady, StatusReject:
		return true
	}
	return false
}

func (s RequestStatus) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid request status %q", string(s))
	}
	return string(s), nil
}

func (s *RequestStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*s = RequestStatus(v)
	case []byte:
		*s = RequestStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into RequestStatus", value)
	}
	if !s.IsValid() {
		return fmt.Errorf("invalid request status %q in database", string(*s))
	}
	return nil
}

// DocumentRequest is a resident's request for a barangay document.
// Price is derived from DocumentType on the way out and never stored;
// the fee schedule is the single source for it.
type DocumentRequest struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	ReferenceNumber string        `json:"reference_number" gorm:"size:64;uniqueIndex"`
	DocumentType    string        `json:"document_type" gorm:"size:100;not null"`
	RequesterName   string        `json:"requester_name" gorm:"size:150;not null"`
	ContactNumber   string        `json:"contact_number" gorm:"size:30"`
	Email           string        `json:"email" gorm:"size:150;not null"`
	Purpose         string        `json:"purpose" gorm:"size:255;not null"`
	Address         string        `json:"address" gorm:"size:255"`
	Status          RequestStatus `json:"status" gorm:"type:varchar(10);not null;default:pending;index"`

	Price decimal.Decimal `json:"price" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
}
