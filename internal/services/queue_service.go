package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"bureau/internal/config"
	"bureau/internal/db"
	"bureau/internal/models"
	"bureau/internal/store"
	"bureau/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyQueue          = errors.New("no customers waiting")
	ErrEntryNotFound       = errors.New("queue entry not found")
	ErrEntryClosed         = errors.New("queue entry already closed")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrCurrencyNotFound    = errors.New("currency not found")
	ErrCurrencyUnavailable = errors.New("currency not available")
)

type CustomerStore interface {
	FindOrCreate(ctx context.Context, tx store.Tx, input store.CustomerInput) (string, error)
}

type QueueStore interface {
	NextTicketNumber(ctx context.Context, tx store.Tx, prefix string, base int) (string, error)
	Insert(ctx context.Context, tx store.Execer, input store.QueueEntryInput) error
	ListActive(ctx context.Context) ([]store.ActiveEntry, error)
	CountWaiting(ctx context.Context, tx store.Getter) (int, error)
	ClaimNext(ctx context.Context, tx store.Tx, tellerID string) (models.QueueEntry, error)
	GetByID(ctx context.Context, queueID string) (models.QueueEntry, error)
	Cancel(ctx context.Context, tx store.Execer, queueID string) (int64, error)
}

type CurrencyReader interface {
	GetByCode(ctx context.Context, code string) (models.Currency, error)
}

type AuditLogger interface {
	Log(ctx context.Context, actorID *string, action, entityType, entityID, data string) error
}

type QueueNotifier interface {
	BroadcastQueueUpdate(update websocket.QueueUpdate)
}

type QueueService struct {
	txRunner   db.TxRunner
	customers  CustomerStore
	queue      QueueStore
	currencies CurrencyReader
	audit      AuditLogger
	hub        QueueNotifier
	cfg        config.Config
	logger     *zap.Logger
}

func NewQueueService(txRunner db.TxRunner, customers CustomerStore, queue QueueStore, currencies CurrencyReader, audit AuditLogger, hub QueueNotifier, cfg config.Config, logger *zap.Logger) *QueueService {
	return &QueueService{
		txRunner:   txRunner,
		customers:  customers,
		queue:      queue,
		currencies: currencies,
		audit:      audit,
		hub:        hub,
		cfg:        cfg,
		logger:     logger,
	}
}

type AdmitRequest struct {
	FullName        string
	PhoneNumber     string
	IDType          string
	IDNumber        string
	ServiceType     string
	CurrencyCode    string
	RequestedAmount decimal.Decimal
}

type AdmitResult struct {
	Entry                models.QueueEntry
	CustomerID           string
	EstimatedWaitMinutes int
}

// Admit registers a customer into the waiting line. Customer dedup, ticket
// sequencing and the entry insert commit as one unit; the change notification
// and audit record follow the commit.
func (s *QueueService) Admit(ctx context.Context, req AdmitRequest) (AdmitResult, error) {
	if req.RequestedAmount.LessThanOrEqual(decimal.Zero) {
		return AdmitResult{}, ErrInvalidAmount
	}
	currency, err := s.currencies.GetByCode(ctx, req.CurrencyCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return AdmitResult{}, ErrCurrencyNotFound
		}
		return AdmitResult{}, err
	}
	if !currency.IsAvailable {
		return AdmitResult{}, ErrCurrencyUnavailable
	}

	var result AdmitResult
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		customerID, err := s.customers.FindOrCreate(ctx, tx, store.CustomerInput{
			ID:          uuid.NewString(),
			FullName:    req.FullName,
			PhoneNumber: req.PhoneNumber,
			IDType:      req.IDType,
			IDNumber:    req.IDNumber,
		})
		if err != nil {
			return err
		}
		waiting, err := s.queue.CountWaiting(ctx, tx)
		if err != nil {
			return err
		}
		ticket, err := s.queue.NextTicketNumber(ctx, tx, s.cfg.TicketPrefix, s.cfg.TicketBase)
		if err != nil {
			return err
		}
		entryID := uuid.NewString()
		if err := s.queue.Insert(ctx, tx, store.QueueEntryInput{
			ID:              entryID,
			TicketNumber:    ticket,
			CustomerID:      customerID,
			ServiceType:     req.ServiceType,
			CurrencyCode:    req.CurrencyCode,
			RequestedAmount: req.RequestedAmount,
		}); err != nil {
			return err
		}
		result = AdmitResult{
			Entry: models.QueueEntry{
				ID:              entryID,
				TicketNumber:    ticket,
				CustomerID:      customerID,
				ServiceType:     req.ServiceType,
				CurrencyCode:    req.CurrencyCode,
				RequestedAmount: req.RequestedAmount,
				Status:          models.StatusWaiting,
			},
			CustomerID:           customerID,
			EstimatedWaitMinutes: waiting * s.cfg.WaitMinutesPerCustomer,
		}
		return nil
	})
	if err != nil {
		return AdmitResult{}, err
	}

	s.logAudit(ctx, nil, "QUEUE_JOIN", "queue_entry", result.Entry.ID, map[string]string{
		"ticket":      result.Entry.TicketNumber,
		"customer_id": result.CustomerID,
	})
	s.hub.BroadcastQueueUpdate(websocket.QueueUpdate{
		Event: websocket.EventNewCustomer,
		Data:  result.Entry,
	})
	return result, nil
}

func (s *QueueService) ListActive(ctx context.Context) ([]store.ActiveEntry, error) {
	return s.queue.ListActive(ctx)
}

// ClaimNext hands the oldest waiting entry to the teller. An empty queue is a
// normal outcome reported as ErrEmptyQueue, not a failure.
func (s *QueueService) ClaimNext(ctx context.Context, tellerID string) (models.QueueEntry, error) {
	var entry models.QueueEntry
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		claimed, err := s.queue.ClaimNext(ctx, tx, tellerID)
		if err != nil {
			return err
		}
		entry = claimed
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueueEntry{}, ErrEmptyQueue
		}
		return models.QueueEntry{}, err
	}

	s.logAudit(ctx, &tellerID, "QUEUE_CALL", "queue_entry", entry.ID, map[string]string{
		"ticket": entry.TicketNumber,
	})
	s.hub.BroadcastQueueUpdate(websocket.QueueUpdate{
		Event: websocket.EventCalled,
		Data:  entry,
	})
	return entry, nil
}

// Cancel closes a waiting or processing entry without settlement. Completed
// entries are immutable and report ErrEntryClosed.
func (s *QueueService) Cancel(ctx context.Context, queueID, actorID string) error {
	var affected int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.queue.Cancel(ctx, tx, queueID)
		if err != nil {
			return err
		}
		affected = rows
		return nil
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := s.queue.GetByID(ctx, queueID); err != nil {
			if err == sql.ErrNoRows {
				return ErrEntryNotFound
			}
			return err
		}
		return ErrEntryClosed
	}

	s.logAudit(ctx, &actorID, "QUEUE_CANCEL", "queue_entry", queueID, nil)
	s.hub.BroadcastQueueUpdate(websocket.QueueUpdate{
		Event: websocket.EventCancelled,
		Data:  map[string]string{"queue_id": queueID},
	})
	return nil
}

func (s *QueueService) logAudit(ctx context.Context, actorID *string, action, entityType, entityID string, details map[string]string) {
	data := "{}"
	if details != nil {
		encoded, _ := json.Marshal(details)
		data = string(encoded)
	}
	if err := s.audit.Log(ctx, actorID, action, entityType, entityID, data); err != nil {
		s.logger.Warn("audit log failed",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
