// Package workflow orchestrates document-request status transitions.
//
// A transition is not a single write: the new status is persisted first (the
// only fatal step), then the requester is notified by email and the revenue
// ledger is brought in line with the new state. Notification and ledger sync
// are best-effort side effects against independent collaborators; each is
// attempted, individually awaited and reported as its own tagged result, and
// a failure in one never rolls back the committed status or the other step.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"barangay-portal-backend/models"
	"barangay-portal-backend/pricing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultPickupLocation is printed in the "ready" email when no override is
// configured.
const DefaultPickupLocation = "Barangay Hall, Records Section"

const defaultCallTimeout = 10 * time.Second

// RequestStore persists the request's status field, the single source of
// truth for the request lifecycle.
type RequestStore interface {
	UpdateStatus(ctx context.Context, id uint, status models.RequestStatus) error
}

// NotificationKind selects the email template sent to the requester.
type NotificationKind string

const (
	NotificationReady    NotificationKind = "ready"
	NotificationRejected NotificationKind = "rejected"
)

// Payload carries the state-specific fields of a notification. Amount and
// PickupLocation are only set for NotificationReady.
type Payload struct {
	Status         models.RequestStatus `json:"status"`
	Amount         string               `json:"amount,omitempty"`
	PickupLocation string               `json:"pickup_location,omitempty"`
}

// NotificationDispatcher sends a status-specific email for a request.
// Fire-and-observe: the controller surfaces a failure but never retries it.
type NotificationDispatcher interface {
	Send(ctx context.Context, req models.DocumentRequest, kind NotificationKind, payload Payload) error
}

// LedgerStore holds the revenue ledger rows derived from ready requests.
// DeleteByReference is idempotent: deleting a reference with no live row is a
// success, not an error.
type LedgerStore interface {
	Create(ctx context.Context, entry models.ReportEntry) (models.ReportEntry, error)
	DeleteByReference(ctx context.Context, referenceNo string) error
}

// Step tags one sub-step of a transition.
type Step string

const (
	StepNotification Step = "notification"
	StepLedgerCreate Step = "ledger_create"
	StepLedgerDelete Step = "ledger_delete"
)

// StepResult reports one side-effect step. Skipped marks a precondition miss
// (the step was not attempted at all, e.g. ledger sync without a reference
// number) as opposed to an attempted call that failed.
type StepResult struct {
	Step    Step   `json:"step"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Detail  string `json:"detail"`
}

// TransitionOutcome is what a completed transition reports back: the status
// that was committed in step one, plus one entry per side-effect step. Callers
// render one message per entry; a single pass/fail flag would hide partial
// success, and the status write must not appear failed just because an
// unrelated notification failed. Steps are advisory telemetry, not a
// correctness gate for the committed status.
type TransitionOutcome struct {
	Status models.RequestStatus `json:"status"`
	Steps  []StepResult         `json:"steps"`
}

// Transitioner runs status transitions against its collaborators. Each
// external call is bounded by CallTimeout independently, so a slow collaborator
// cannot indefinitely delay reporting an already-persisted status change.
type Transitioner struct {
	Requests RequestStore
	Ledger   LedgerStore
	Notifier NotificationDispatcher

	Log            *logrus.Logger
	PickupLocation string
	CallTimeout    time.Duration
}

// Transition moves req to target and runs the side effects the target state
// requires:
//
//	ready   -> "ready" email (amount + pickup location) and ledger create
//	reject  -> "rejected" email and ledger delete
//	pending -> ledger delete only (administrative reversal)
//
// The status write is fatal on failure (*StoreError, zero side effects).
// Notification and ledger sync then run concurrently, evaluated against the
// target bound here, not against whatever a concurrent write may land later.
func (t *Transitioner) Transition(ctx context.Context, req models.DocumentRequest, target models.RequestStatus) (TransitionOutcome, error) {
	if !target.IsValid() {
		return TransitionOutcome{}, fmt.Errorf("invalid target status %q", string(target))
	}

	if err := t.withTimeout(ctx, func(c context.Context) error {
		return t.Requests.UpdateStatus(c, req.ID, target)
	}); err != nil {
		return TransitionOutcome{}, &StoreError{RequestID: req.ID, Target: target, Err: err}
	}

	fee := pricing.Fee(req.DocumentType)
	outcome := TransitionOutcome{Status: target}

	switch target {
	case models.StatusReady:
		var notif, ledger StepResult
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			notif = t.notify(ctx, req, NotificationReady, Payload{
				Status:         target,
				Amount:         fee.String(),
				PickupLocation: t.pickupLocation(),
			})
		}()
		go func() {
			defer wg.Done()
			ledger = t.ledgerCreate(ctx, req, fee)
		}()
		wg.Wait()
		outcome.Steps = append(outcome.Steps, notif, ledger)

	case models.StatusReject:
		var notif StepResult
		var ledger *StepResult
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			notif = t.notify(ctx, req, NotificationRejected, Payload{Status: target})
		}()
		if req.ReferenceNumber != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res := t.ledgerDelete(ctx, req.ReferenceNumber)
				ledger = &res
			}()
		}
		wg.Wait()
		outcome.Steps = append(outcome.Steps, notif)
		if ledger != nil {
			outcome.Steps = append(outcome.Steps, *ledger)
		}

	case models.StatusPending:
		if req.ReferenceNumber != "" {
			outcome.Steps = append(outcome.Steps, t.ledgerDelete(ctx, req.ReferenceNumber))
		}
	}

	return outcome, nil
}

func (t *Transitioner) notify(ctx context.Context, req models.DocumentRequest, kind NotificationKind, payload Payload) StepResult {
	err := t.withTimeout(ctx, func(c context.Context) error {
		return t.Notifier.Send(c, req, kind, payload)
	})
	if err != nil {
		derr := &DispatchError{RequestID: req.ID, Kind: kind, Err: err}
		t.logger().WithFields(logrus.Fields{
			"request_id": req.ID,
			"kind":       string(kind),
		}).Warn(derr.Error())
		return StepResult{Step: StepNotification, Detail: derr.Error()}
	}
	return StepResult{Step: StepNotification, OK: true, Detail: fmt.Sprintf("%s notification sent", kind)}
}

func (t *Transitioner) ledgerCreate(ctx context.Context, req models.DocumentRequest, fee decimal.Decimal) StepResult {
	if req.ReferenceNumber == "" {
		// Precondition miss, not a malformed call: a request cannot reach the
		// revenue ledger before a reference number is assigned.
		return StepResult{
			Step:    StepLedgerCreate,
			Skipped: true,
			Detail:  "request has no reference number; ledger entry not created",
		}
	}
	entry := models.ReportEntry{
		ReferenceNo:  req.ReferenceNumber,
		DocumentType: req.DocumentType,
		Requestor:    req.RequesterName,
		Purpose:      req.Purpose,
		Price:        fee,
		Status:       models.StatusReady,
	}
	err := t.withTimeout(ctx, func(c context.Context) error {
		_, err := t.Ledger.Create(c, entry)
		return err
	})
	if err != nil {
		lerr := &LedgerError{ReferenceNo: req.ReferenceNumber, Op: StepLedgerCreate, Err: err}
		t.logger().WithField("reference_no", req.ReferenceNumber).Warn(lerr.Error())
		return StepResult{Step: StepLedgerCreate, Detail: lerr.Error()}
	}
	return StepResult{Step: StepLedgerCreate, OK: true, Detail: "revenue ledger entry created"}
}

func (t *Transitioner) ledgerDelete(ctx context.Context, referenceNo string) StepResult {
	err := t.withTimeout(ctx, func(c context.Context) error {
		return t.Ledger.DeleteByReference(c, referenceNo)
	})
	if err != nil {
		lerr := &LedgerError{ReferenceNo: referenceNo, Op: StepLedgerDelete, Err: err}
		t.logger().WithField("reference_no", referenceNo).Warn(lerr.Error())
		return StepResult{Step: StepLedgerDelete, Detail: lerr.Error()}
	}
	return StepResult{Step: StepLedgerDelete, OK: true, Detail: "revenue ledger entry removed"}
}

func (t *Transitioner) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	d := t.CallTimeout
	if d <= 0 {
		d = defaultCallTimeout
	}
	c, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(c)
}

func (t *Transitioner) pickupLocation() string {
	if t.PickupLocation != "" {
		return t.PickupLocation
	}
	return DefaultPickupLocation
}

func (t *Transitioner) logger() *logrus.Logger {
	if t.Log != nil {
		return t.Log
	}
	return logrus.StandardLogger()
}
