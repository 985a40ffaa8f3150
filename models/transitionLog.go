package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransitionLog records one orchestrated status transition together with the
// outcome of each sub-step (status write, notification, ledger sync). Steps is
// the serialized per-step result list; it lets staff audit partially-applied
// transitions after the response toast is gone.
type TransitionLog struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	RequestID   uint           `json:"request_id" gorm:"index;not null"`
	ReferenceNo string         `json:"reference_no" gorm:"size:64;index"`
	FromStatus  RequestStatus  `json:"from_status" gorm:"type:varchar(10)"`
	ToStatus    RequestStatus  `json:"to_status" gorm:"type:varchar(10);not null"`
	Steps       datatypes.JSON `json:"steps" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`
}
