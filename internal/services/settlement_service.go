package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bureau/internal/config"
	"bureau/internal/db"
	"bureau/internal/models"
	"bureau/internal/money"
	"bureau/internal/store"
	"bureau/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadySettled    = errors.New("queue entry already settled")
	ErrInvalidRate       = errors.New("invalid rate")
)

type SettlementQueueStore interface {
	GetForSettlement(ctx context.Context, tx store.Getter, queueID string) (store.SettlementRow, error)
	MarkCompleted(ctx context.Context, tx store.Execer, queueID string) error
}

type CurrencyLedger interface {
	UpdateStock(ctx context.Context, tx store.Execer, code string, stock decimal.Decimal) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	ListByTeller(ctx context.Context, tellerID string, limit int) ([]store.TransactionWithCustomer, error)
	TellerStatsToday(ctx context.Context, tellerID string) (store.TellerDayStats, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, tx store.Execer, id, notifType, message, recipientRole string) error
}

type SettlementService struct {
	txRunner      db.TxRunner
	queue         SettlementQueueStore
	currencies    CurrencyLedger
	transactions  TransactionStore
	notifications NotificationStore
	audit         AuditLogger
	hub           QueueNotifier
	cfg           config.Config
	logger        *zap.Logger
}

func NewSettlementService(txRunner db.TxRunner, queue SettlementQueueStore, currencies CurrencyLedger, transactions TransactionStore, notifications NotificationStore, audit AuditLogger, hub QueueNotifier, cfg config.Config, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		txRunner:      txRunner,
		queue:         queue,
		currencies:    currencies,
		transactions:  transactions,
		notifications: notifications,
		audit:         audit,
		hub:           hub,
		cfg:           cfg,
		logger:        logger,
	}
}

type SettleRequest struct {
	QueueID        string
	TellerID       string
	OverrideAmount *decimal.Decimal
	OverrideRate   *decimal.Decimal
}

// Settle turns a claimed queue entry into a closed, inventory-consistent
// transaction. The locked read, the stock write, the transaction snapshot,
// the entry completion and the low-stock notification commit together or not
// at all; a stock balance that would go negative aborts the whole unit.
func (s *SettlementService) Settle(ctx context.Context, req SettleRequest) (models.Transaction, error) {
	if req.OverrideAmount != nil && req.OverrideAmount.LessThanOrEqual(decimal.Zero) {
		return models.Transaction{}, ErrInvalidAmount
	}
	if req.OverrideRate != nil && req.OverrideRate.LessThanOrEqual(decimal.Zero) {
		return models.Transaction{}, ErrInvalidRate
	}

	var (
		settled      models.Transaction
		ticketNumber string
	)
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		entry, err := s.queue.GetForSettlement(ctx, tx, req.QueueID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrEntryNotFound
			}
			return err
		}
		if entry.Status == models.StatusCompleted || entry.Status == models.StatusCancelled {
			return ErrAlreadySettled
		}
		ticketNumber = entry.TicketNumber

		amount := entry.RequestedAmount
		if req.OverrideAmount != nil {
			amount = *req.OverrideAmount
		}
		rate := entry.SellRate
		if entry.ServiceType == models.ServiceBuy {
			rate = entry.BuyRate
		}
		if req.OverrideRate != nil {
			rate = *req.OverrideRate
		}
		localAmount := amount.Mul(rate).RoundBank(2)

		// buy: the customer sells foreign cash to the branch, stock grows.
		// sell: the branch hands foreign cash out, stock shrinks.
		delta := amount
		if entry.ServiceType == models.ServiceSell {
			delta = amount.Neg()
		}
		newStock := entry.StockAmount.Add(delta)
		if newStock.IsNegative() {
			return ErrInsufficientStock
		}
		if err := s.currencies.UpdateStock(ctx, tx, entry.CurrencyCode, newStock); err != nil {
			return err
		}

		settled = models.Transaction{
			ID:            uuid.NewString(),
			Reference:     "TRX-" + uuid.NewString(),
			QueueID:       entry.ID,
			TellerID:      req.TellerID,
			CustomerID:    entry.CustomerID,
			Type:          entry.ServiceType,
			CurrencyCode:  entry.CurrencyCode,
			AmountForeign: amount,
			ExchangeRate:  rate,
			AmountLocal:   localAmount,
			IsSuspicious:  amount.GreaterThanOrEqual(s.cfg.SuspiciousThreshold(entry.CurrencyCode)),
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:            settled.ID,
			Reference:     settled.Reference,
			QueueID:       settled.QueueID,
			TellerID:      settled.TellerID,
			CustomerID:    settled.CustomerID,
			Type:          settled.Type,
			CurrencyCode:  settled.CurrencyCode,
			AmountForeign: settled.AmountForeign,
			ExchangeRate:  settled.ExchangeRate,
			AmountLocal:   settled.AmountLocal,
			IsSuspicious:  settled.IsSuspicious,
		}); err != nil {
			return err
		}

		if err := s.queue.MarkCompleted(ctx, tx, entry.ID); err != nil {
			return err
		}

		if newStock.LessThanOrEqual(entry.LowStockThreshold) {
			message := fmt.Sprintf("Low stock for %s: only %s remains.", entry.CurrencyCode, money.FormatAmount(newStock))
			if err := s.notifications.Insert(ctx, tx, uuid.NewString(), "low_cash", message, "admin"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	data, _ := json.Marshal(map[string]string{
		"reference": settled.Reference,
		"ticket":    ticketNumber,
		"amount":    money.FormatAmount(settled.AmountForeign),
		"currency":  settled.CurrencyCode,
	})
	if err := s.audit.Log(ctx, &req.TellerID, "TRANSACTION_EXECUTE", "transaction", settled.ID, string(data)); err != nil {
		s.logger.Warn("audit log failed",
			zap.String("action", "TRANSACTION_EXECUTE"),
			zap.String("transaction_id", settled.ID),
			zap.Error(err))
	}
	s.hub.BroadcastQueueUpdate(websocket.QueueUpdate{
		Event: websocket.EventCompleted,
		Data: map[string]string{
			"queue_id": settled.QueueID,
			"ticket":   ticketNumber,
		},
	})
	return settled, nil
}

func (s *SettlementService) History(ctx context.Context, tellerID string) ([]store.TransactionWithCustomer, error) {
	return s.transactions.ListByTeller(ctx, tellerID, s.cfg.TellerHistoryLimit)
}

func (s *SettlementService) DashboardStats(ctx context.Context, tellerID string) (store.TellerDayStats, error) {
	return s.transactions.TellerStatsToday(ctx, tellerID)
}
