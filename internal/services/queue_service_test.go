package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"bureau/internal/models"
	"bureau/internal/store"
	"bureau/internal/websocket"

	"go.uber.org/zap"
)

type stubCustomerStore struct {
	id  string
	err error
}

func (s *stubCustomerStore) FindOrCreate(context.Context, store.Tx, store.CustomerInput) (string, error) {
	return s.id, s.err
}

type stubQueueStore struct {
	ticket      string
	ticketErr   error
	insertErr   error
	inserted    []store.QueueEntryInput
	waiting     int
	active      []store.ActiveEntry
	claimEntry  models.QueueEntry
	claimErr    error
	cancelRows  int64
	cancelErr   error
	getByIDRow  models.QueueEntry
	getByIDErr  error
	getByIDSeen []string
}

func (s *stubQueueStore) NextTicketNumber(context.Context, store.Tx, string, int) (string, error) {
	return s.ticket, s.ticketErr
}

func (s *stubQueueStore) Insert(_ context.Context, _ store.Execer, input store.QueueEntryInput) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, input)
	return nil
}

func (s *stubQueueStore) ListActive(context.Context) ([]store.ActiveEntry, error) {
	return s.active, nil
}

func (s *stubQueueStore) CountWaiting(context.Context, store.Getter) (int, error) {
	return s.waiting, nil
}

func (s *stubQueueStore) ClaimNext(context.Context, store.Tx, string) (models.QueueEntry, error) {
	return s.claimEntry, s.claimErr
}

func (s *stubQueueStore) GetByID(_ context.Context, queueID string) (models.QueueEntry, error) {
	s.getByIDSeen = append(s.getByIDSeen, queueID)
	return s.getByIDRow, s.getByIDErr
}

func (s *stubQueueStore) Cancel(context.Context, store.Execer, string) (int64, error) {
	return s.cancelRows, s.cancelErr
}

type stubCurrencyReader struct {
	currency models.Currency
	err      error
}

func (s *stubCurrencyReader) GetByCode(context.Context, string) (models.Currency, error) {
	return s.currency, s.err
}

func availableCurrency(code string) models.Currency {
	return models.Currency{Code: code, IsAvailable: true}
}

func newQueueService(customers *stubCustomerStore, queue *stubQueueStore, currencies *stubCurrencyReader, audit *stubAuditLogger, hub *stubHub) *QueueService {
	return NewQueueService(fakeTxRunner{}, customers, queue, currencies, audit, hub, testConfig(), zap.NewNop())
}

func admitRequest() AdmitRequest {
	return AdmitRequest{
		FullName:        "Jane Smith",
		PhoneNumber:     "+254700000001",
		IDType:          "passport",
		IDNumber:        "AB123456",
		ServiceType:     models.ServiceBuy,
		CurrencyCode:    "USD",
		RequestedAmount: dec("50"),
	}
}

func TestAdmitIssuesTicketAndEstimatesWait(t *testing.T) {
	queue := &stubQueueStore{ticket: "A103", waiting: 3}
	audit := &stubAuditLogger{}
	hub := &stubHub{}
	service := newQueueService(&stubCustomerStore{id: "cust-1"}, queue, &stubCurrencyReader{currency: availableCurrency("USD")}, audit, hub)

	result, err := service.Admit(context.Background(), admitRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entry.TicketNumber != "A103" {
		t.Fatalf("expected ticket A103, got %s", result.Entry.TicketNumber)
	}
	if result.Entry.Status != models.StatusWaiting {
		t.Fatalf("expected waiting status, got %s", result.Entry.Status)
	}
	if result.EstimatedWaitMinutes != 15 {
		t.Fatalf("3 waiting at 5 min each should be 15, got %d", result.EstimatedWaitMinutes)
	}
	if len(queue.inserted) != 1 || queue.inserted[0].CustomerID != "cust-1" {
		t.Fatalf("entry insert missing or wrong: %#v", queue.inserted)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "QUEUE_JOIN" {
		t.Fatalf("expected QUEUE_JOIN audit, got %#v", audit.actions)
	}
	if len(hub.updates) != 1 || hub.updates[0].Event != websocket.EventNewCustomer {
		t.Fatalf("expected new_customer broadcast, got %#v", hub.updates)
	}
}

func TestAdmitRejectsNonPositiveAmount(t *testing.T) {
	service := newQueueService(&stubCustomerStore{}, &stubQueueStore{}, &stubCurrencyReader{}, &stubAuditLogger{}, &stubHub{})
	req := admitRequest()
	req.RequestedAmount = dec("0")
	if _, err := service.Admit(context.Background(), req); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAdmitUnknownCurrency(t *testing.T) {
	service := newQueueService(&stubCustomerStore{}, &stubQueueStore{}, &stubCurrencyReader{err: sql.ErrNoRows}, &stubAuditLogger{}, &stubHub{})
	if _, err := service.Admit(context.Background(), admitRequest()); err != ErrCurrencyNotFound {
		t.Fatalf("expected ErrCurrencyNotFound, got %v", err)
	}
}

func TestAdmitUnavailableCurrency(t *testing.T) {
	currency := models.Currency{Code: "USD", IsAvailable: false}
	service := newQueueService(&stubCustomerStore{}, &stubQueueStore{}, &stubCurrencyReader{currency: currency}, &stubAuditLogger{}, &stubHub{})
	if _, err := service.Admit(context.Background(), admitRequest()); err != ErrCurrencyUnavailable {
		t.Fatalf("expected ErrCurrencyUnavailable, got %v", err)
	}
}

func TestAdmitDoesNotNotifyWhenInsertFails(t *testing.T) {
	queue := &stubQueueStore{ticket: "A100", insertErr: errors.New("unique violation")}
	audit := &stubAuditLogger{}
	hub := &stubHub{}
	service := newQueueService(&stubCustomerStore{id: "cust-1"}, queue, &stubCurrencyReader{currency: availableCurrency("USD")}, audit, hub)

	if _, err := service.Admit(context.Background(), admitRequest()); err == nil {
		t.Fatalf("expected error")
	}
	if len(audit.actions) != 0 || len(hub.updates) != 0 {
		t.Fatalf("no side channels after rollback")
	}
}

func TestClaimNextReturnsOldestEntry(t *testing.T) {
	claimed := models.QueueEntry{ID: "q-1", TicketNumber: "A100", Status: models.StatusProcessing}
	queue := &stubQueueStore{claimEntry: claimed}
	audit := &stubAuditLogger{}
	hub := &stubHub{}
	service := newQueueService(&stubCustomerStore{}, queue, &stubCurrencyReader{}, audit, hub)

	entry, err := service.ClaimNext(context.Background(), "teller-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != "q-1" || entry.Status != models.StatusProcessing {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "QUEUE_CALL" {
		t.Fatalf("expected QUEUE_CALL audit, got %#v", audit.actions)
	}
	if len(hub.updates) != 1 || hub.updates[0].Event != websocket.EventCalled {
		t.Fatalf("expected called broadcast, got %#v", hub.updates)
	}
}

func TestClaimNextEmptyQueue(t *testing.T) {
	queue := &stubQueueStore{claimErr: sql.ErrNoRows}
	hub := &stubHub{}
	service := newQueueService(&stubCustomerStore{}, queue, &stubCurrencyReader{}, &stubAuditLogger{}, hub)

	if _, err := service.ClaimNext(context.Background(), "teller-1"); err != ErrEmptyQueue {
		t.Fatalf("expected ErrEmptyQueue, got %v", err)
	}
	if len(hub.updates) != 0 {
		t.Fatalf("empty queue must not broadcast")
	}
}

func TestCancelOpenEntry(t *testing.T) {
	queue := &stubQueueStore{cancelRows: 1}
	audit := &stubAuditLogger{}
	hub := &stubHub{}
	service := newQueueService(&stubCustomerStore{}, queue, &stubCurrencyReader{}, audit, hub)

	if err := service.Cancel(context.Background(), "q-1", "teller-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "QUEUE_CANCEL" {
		t.Fatalf("expected QUEUE_CANCEL audit, got %#v", audit.actions)
	}
	if len(hub.updates) != 1 || hub.updates[0].Event != websocket.EventCancelled {
		t.Fatalf("expected cancelled broadcast, got %#v", hub.updates)
	}
}

func TestCancelMissingEntry(t *testing.T) {
	queue := &stubQueueStore{cancelRows: 0, getByIDErr: sql.ErrNoRows}
	service := newQueueService(&stubCustomerStore{}, queue, &stubCurrencyReader{}, &stubAuditLogger{}, &stubHub{})

	if err := service.Cancel(context.Background(), "missing", "teller-1"); err != ErrEntryNotFound {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if len(queue.getByIDSeen) != 1 || queue.getByIDSeen[0] != "missing" {
		t.Fatalf("expected lookup to distinguish the failure, got %#v", queue.getByIDSeen)
	}
}

func TestCancelClosedEntry(t *testing.T) {
	queue := &stubQueueStore{cancelRows: 0, getByIDRow: models.QueueEntry{ID: "q-1", Status: models.StatusCompleted}}
	hub := &stubHub{}
	service := newQueueService(&stubCustomerStore{}, queue, &stubCurrencyReader{}, &stubAuditLogger{}, hub)

	if err := service.Cancel(context.Background(), "q-1", "teller-1"); err != ErrEntryClosed {
		t.Fatalf("expected ErrEntryClosed, got %v", err)
	}
	if len(hub.updates) != 0 {
		t.Fatalf("closed entry must not broadcast")
	}
}

func TestAuditFailureDoesNotFailTheOperation(t *testing.T) {
	queue := &stubQueueStore{claimEntry: models.QueueEntry{ID: "q-1", TicketNumber: "A100"}}
	audit := &stubAuditLogger{err: errors.New("audit db down")}
	service := newQueueService(&stubCustomerStore{}, queue, &stubCurrencyReader{}, audit, &stubHub{})

	if _, err := service.ClaimNext(context.Background(), "teller-1"); err != nil {
		t.Fatalf("audit failure must not surface: %v", err)
	}
}
