package workflow

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"barangay-portal-backend/models"

	"github.com/sirupsen/logrus"
)

type statusWrite struct {
	id     uint
	status models.RequestStatus
}

type fakeRequests struct {
	mu          sync.Mutex
	writes      []statusWrite
	err         error
	hadDeadline bool
}

func (f *fakeRequests) UpdateStatus(ctx context.Context, id uint, status models.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, statusWrite{id: id, status: status})
	return nil
}

type notifyCall struct {
	requestID uint
	kind      NotificationKind
	payload   Payload
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) Send(ctx context.Context, req models.DocumentRequest, kind NotificationKind, payload Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{requestID: req.ID, kind: kind, payload: payload})
	return f.err
}

type fakeLedger struct {
	mu        sync.Mutex
	creates   []models.ReportEntry
	deletes   []string
	createErr error
	deleteErr error
}

func (f *fakeLedger) Create(ctx context.Context, entry models.ReportEntry) (models.ReportEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.ReportEntry{}, f.createErr
	}
	f.creates = append(f.creates, entry)
	return entry, nil
}

func (f *fakeLedger) DeleteByReference(ctx context.Context, referenceNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, referenceNo)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTransitioner(r *fakeRequests, l *fakeLedger, n *fakeNotifier) *Transitioner {
	return &Transitioner{Requests: r, Ledger: l, Notifier: n, Log: quietLogger()}
}

func clearanceRequest() models.DocumentRequest {
	return models.DocumentRequest{
		ID:              7,
		ReferenceNumber: "DOC-2024-AB12",
		DocumentType:    "Barangay Clearance",
		RequesterName:   "Juan dela Cruz",
		Email:           "juan@example.com",
		Purpose:         "employment",
		Status:          models.StatusPending,
	}
}

func findStep(t *testing.T, steps []StepResult, step Step) StepResult {
	t.Helper()
	for _, s := range steps {
		if s.Step == step {
			return s
		}
	}
	t.Fatalf("no %s step in %+v", step, steps)
	return StepResult{}
}

func TestTransition_Ready(t *testing.T) {
	requests := &fakeRequests{}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	tr := newTransitioner(requests, ledger, notifier)

	outcome, err := tr.Transition(context.Background(), clearanceRequest(), models.StatusReady)
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if outcome.Status != models.StatusReady {
		t.Fatalf("expected committed status ready, got %s", outcome.Status)
	}
	if len(requests.writes) != 1 || requests.writes[0] != (statusWrite{id: 7, status: models.StatusReady}) {
		t.Fatalf("unexpected store writes: %+v", requests.writes)
	}
	if !requests.hadDeadline {
		t.Fatal("store write ran without a per-call deadline")
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.kind != NotificationReady || call.requestID != 7 {
		t.Fatalf("unexpected notification call: %+v", call)
	}
	if call.payload.Amount != "40" {
		t.Fatalf("expected amount 40 for a clearance, got %q", call.payload.Amount)
	}
	if call.payload.PickupLocation != DefaultPickupLocation {
		t.Fatalf("unexpected pickup location %q", call.payload.PickupLocation)
	}

	if len(ledger.creates) != 1 {
		t.Fatalf("expected exactly one ledger create, got %d", len(ledger.creates))
	}
	entry := ledger.creates[0]
	if entry.ReferenceNo != "DOC-2024-AB12" || entry.Price.String() != "40" || entry.Status != models.StatusReady {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}
	if entry.Requestor != "Juan dela Cruz" || entry.DocumentType != "Barangay Clearance" {
		t.Fatalf("ledger entry did not snapshot the request: %+v", entry)
	}

	if len(outcome.Steps) != 2 {
		t.Fatalf("expected 2 step results, got %+v", outcome.Steps)
	}
	if s := findStep(t, outcome.Steps, StepNotification); !s.OK {
		t.Fatalf("notification step not ok: %+v", s)
	}
	if s := findStep(t, outcome.Steps, StepLedgerCreate); !s.OK {
		t.Fatalf("ledger create step not ok: %+v", s)
	}
}

func TestTransition_Reject(t *testing.T) {
	requests := &fakeRequests{}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	tr := newTransitioner(requests, ledger, notifier)

	outcome, err := tr.Transition(context.Background(), clearanceRequest(), models.StatusReject)
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if len(notifier.calls) != 1 || notifier.calls[0].kind != NotificationRejected {
		t.Fatalf("expected one rejected notification, got %+v", notifier.calls)
	}
	if len(ledger.creates) != 0 {
		t.Fatalf("reject must not create ledger entries: %+v", ledger.creates)
	}
	if len(ledger.deletes) != 1 || ledger.deletes[0] != "DOC-2024-AB12" {
		t.Fatalf("expected delete by reference, got %+v", ledger.deletes)
	}
	if s := findStep(t, outcome.Steps, StepLedgerDelete); !s.OK {
		t.Fatalf("ledger delete step not ok: %+v", s)
	}
}

func TestTransition_BackToPending(t *testing.T) {
	requests := &fakeRequests{}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	tr := newTransitioner(requests, ledger, notifier)

	req := clearanceRequest()
	req.Status = models.StatusReady

	outcome, err := tr.Transition(context.Background(), req, models.StatusPending)
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("reversal to pending must not notify: %+v", notifier.calls)
	}
	if len(ledger.deletes) != 1 || ledger.deletes[0] != "DOC-2024-AB12" {
		t.Fatalf("expected ledger delete on reversal, got %+v", ledger.deletes)
	}
	if len(outcome.Steps) != 1 || outcome.Steps[0].Step != StepLedgerDelete {
		t.Fatalf("unexpected steps: %+v", outcome.Steps)
	}
}

func TestTransition_PendingWithoutReference(t *testing.T) {
	requests := &fakeRequests{}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	tr := newTransitioner(requests, ledger, notifier)

	req := clearanceRequest()
	req.ReferenceNumber = ""

	outcome, err := tr.Transition(context.Background(), req, models.StatusPending)
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if len(outcome.Steps) != 0 || len(ledger.deletes) != 0 || len(notifier.calls) != 0 {
		t.Fatalf("expected a bare status write, got steps=%+v deletes=%+v notifications=%+v",
			outcome.Steps, ledger.deletes, notifier.calls)
	}
}

func TestTransition_StoreFailureIsFatal(t *testing.T) {
	requests := &fakeRequests{err: errors.New("connection refused")}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	tr := newTransitioner(requests, ledger, notifier)

	_, err := tr.Transition(context.Background(), clearanceRequest(), models.StatusReady)
	if err == nil {
		t.Fatal("expected an error")
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StoreError, got %T: %v", err, err)
	}
	if se.RequestID != 7 || se.Target != models.StatusReady {
		t.Fatalf("unexpected store error fields: %+v", se)
	}
	if len(notifier.calls) != 0 || len(ledger.creates) != 0 || len(ledger.deletes) != 0 {
		t.Fatal("fatal store failure must produce zero side effects")
	}
}

func TestTransition_ReadyWithoutReferenceSkipsLedger(t *testing.T) {
	requests := &fakeRequests{}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	tr := newTransitioner(requests, ledger, notifier)

	req := clearanceRequest()
	req.ReferenceNumber = ""

	outcome, err := tr.Transition(context.Background(), req, models.StatusReady)
	if err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if len(requests.writes) != 1 {
		t.Fatalf("store write should still happen: %+v", requests.writes)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("notification should still be attempted: %+v", notifier.calls)
	}
	if len(ledger.creates) != 0 {
		t.Fatalf("ledger create must not be attempted without a reference: %+v", ledger.creates)
	}
	s := findStep(t, outcome.Steps, StepLedgerCreate)
	if !s.Skipped || s.OK {
		t.Fatalf("expected a skipped ledger step, got %+v", s)
	}
}

func TestTransition_LedgerFailureDoesNotAffectNotification(t *testing.T) {
	requests := &fakeRequests{}
	ledger := &fakeLedger{createErr: errors.New("ledger service unavailable")}
	notifier := &fakeNotifier{}
	tr := newTransitioner(requests, ledger, notifier)

	outcome, err := tr.Transition(context.Background(), clearanceRequest(), models.StatusReady)
	if err != nil {
		t.Fatalf("non-fatal ledger failure must not surface as an error: %v", err)
	}
	if outcome.Status != models.StatusReady {
		t.Fatalf("status must remain committed, got %s", outcome.Status)
	}
	if s := findStep(t, outcome.Steps, StepNotification); !s.OK {
		t.Fatalf("notification step should be ok: %+v", s)
	}
	s := findStep(t, outcome.Steps, StepLedgerCreate)
	if s.OK || s.Skipped {
		t.Fatalf("ledger step should be a reported failure, got %+v", s)
	}
	if s.Detail == "" {
		t.Fatal("failed step must carry a detail message")
	}
}

func TestTransition_NotificationFailureDoesNotAffectLedger(t *testing.T) {
	requests := &fakeRequests{}
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{err: errors.New("smtp timeout")}
	tr := newTransitioner(requests, ledger, notifier)

	outcome, err := tr.Transition(context.Background(), clearanceRequest(), models.StatusReady)
	if err != nil {
		t.Fatalf("non-fatal dispatch failure must not surface as an error: %v", err)
	}
	if len(ledger.creates) != 1 {
		t.Fatalf("ledger create should still run: %+v", ledger.creates)
	}
	if s := findStep(t, outcome.Steps, StepNotification); s.OK {
		t.Fatalf("notification step should be a reported failure, got %+v", s)
	}
}

func TestTransition_InvalidTarget(t *testing.T) {
	requests := &fakeRequests{}
	tr := newTransitioner(requests, &fakeLedger{}, &fakeNotifier{})

	_, err := tr.Transition(context.Background(), clearanceRequest(), models.RequestStatus("archived"))
	if err == nil {
		t.Fatal("expected an error for an invalid target status")
	}
	if len(requests.writes) != 0 {
		t.Fatalf("invalid target must not reach the store: %+v", requests.writes)
	}
}
