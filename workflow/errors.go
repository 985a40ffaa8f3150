package workflow

import (
	"fmt"

	"barangay-portal-backend/models"
)

// StoreError is fatal: the status write itself failed, nothing was changed and
// no side effect was attempted. The caller may retry the whole transition.
type StoreError struct {
	RequestID uint
	Target    models.RequestStatus
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("status write failed for request %d (target %s): %v", e.RequestID, e.Target, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DispatchError is non-fatal: the status was committed but the requester was
// not notified.
type DispatchError struct {
	RequestID uint
	Kind      NotificationKind
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s notification failed for request %d: %v", e.Kind, e.RequestID, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// LedgerError is non-fatal: the status was committed but the revenue ledger is
// now out of sync with it. Staff re-trigger the ledger step by toggling the
// status again; nothing is retried automatically.
type LedgerError struct {
	ReferenceNo string
	Op          Step
	Err         error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s failed for reference %s: %v", e.Op, e.ReferenceNo, e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }
