package store

import (
	"context"
	"fmt"
	"time"

	"bureau/internal/models"

	"github.com/shopspring/decimal"
)

type QueueStore struct {
	db DB
}

func NewQueueStore(db DB) *QueueStore {
	return &QueueStore{db: db}
}

type QueueEntryInput struct {
	ID              string
	TicketNumber    string
	CustomerID      string
	ServiceType     string
	CurrencyCode    string
	RequestedAmount decimal.Decimal
}

// ActiveEntry is a queue entry joined with its customer, as shown on the
// branch display board and the teller dashboard.
type ActiveEntry struct {
	ID              string          `db:"id" json:"id"`
	TicketNumber    string          `db:"ticket_number" json:"ticket_number"`
	Status          string          `db:"status" json:"status"`
	ServiceType     string          `db:"service_type" json:"service_type"`
	CurrencyCode    string          `db:"currency_code" json:"currency_code"`
	RequestedAmount decimal.Decimal `db:"requested_amount" json:"requested_amount"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	CalledAt        *time.Time      `db:"called_at" json:"called_at,omitempty"`
	FullName        string          `db:"full_name" json:"full_name"`
	PhoneNumber     string          `db:"phone_number" json:"phone_number"`
	IDType          string          `db:"id_type" json:"id_type"`
	IDNumber        string          `db:"id_number" json:"id_number"`
}

// SettlementRow is a queue entry joined with its currency's live terms, read
// under FOR UPDATE so both the entry and the currency stay locked until the
// settlement commits or rolls back.
type SettlementRow struct {
	ID                string          `db:"id"`
	TicketNumber      string          `db:"ticket_number"`
	CustomerID        string          `db:"customer_id"`
	ServiceType       string          `db:"service_type"`
	CurrencyCode      string          `db:"currency_code"`
	RequestedAmount   decimal.Decimal `db:"requested_amount"`
	Status            string          `db:"status"`
	BuyRate           decimal.Decimal `db:"buy_rate"`
	SellRate          decimal.Decimal `db:"sell_rate"`
	StockAmount       decimal.Decimal `db:"stock_amount"`
	LowStockThreshold decimal.Decimal `db:"low_stock_threshold"`
}

// NextTicketNumber bumps the per-day counter atomically and derives the
// ticket from it. Counting today's rows and adding one is racy under
// concurrent admissions; the upsert-returning form is not.
func (s *QueueStore) NextTicketNumber(ctx context.Context, tx Tx, prefix string, base int) (string, error) {
	var counter int
	err := tx.GetContext(ctx, &counter, `
		INSERT INTO ticket_sequences (day, counter)
		VALUES (CURRENT_DATE, 1)
		ON CONFLICT (day) DO UPDATE SET counter = ticket_sequences.counter + 1
		RETURNING counter
	`)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", prefix, base+counter-1), nil
}

func (s *QueueStore) Insert(ctx context.Context, tx Execer, input QueueEntryInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO queue_entries (id, ticket_number, customer_id, service_type, currency_code, requested_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'waiting')
	`, input.ID, input.TicketNumber, input.CustomerID, input.ServiceType, input.CurrencyCode, input.RequestedAmount)
	return err
}

func (s *QueueStore) ListActive(ctx context.Context) ([]ActiveEntry, error) {
	var rows []ActiveEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT q.id, q.ticket_number, q.status, q.service_type, q.currency_code, q.requested_amount,
		       q.created_at, q.called_at,
		       c.full_name, c.phone_number, c.id_type, c.id_number
		FROM queue_entries q
		JOIN customers c ON c.id = q.customer_id
		WHERE q.status IN ('waiting', 'processing')
		ORDER BY q.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *QueueStore) CountWaiting(ctx context.Context, tx Getter) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM queue_entries WHERE status = 'waiting'
	`)
	return count, err
}

// ClaimNext transitions the oldest waiting entry to processing and binds the
// teller, all in one statement. SKIP LOCKED keeps two concurrent claims off
// the same row: the second caller selects the next entry or nothing at all.
func (s *QueueStore) ClaimNext(ctx context.Context, tx Tx, tellerID string) (models.QueueEntry, error) {
	var row models.QueueEntry
	err := tx.GetContext(ctx, &row, `
		UPDATE queue_entries
		SET status = 'processing', assigned_teller_id = $1, called_at = NOW()
		WHERE id = (
			SELECT id FROM queue_entries
			WHERE status = 'waiting'
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, ticket_number, customer_id, service_type, currency_code, requested_amount,
		          status, assigned_teller_id, created_at, called_at, completed_at
	`, tellerID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	return row, nil
}

func (s *QueueStore) GetForSettlement(ctx context.Context, tx Getter, queueID string) (SettlementRow, error) {
	var row SettlementRow
	err := tx.GetContext(ctx, &row, `
		SELECT q.id, q.ticket_number, q.customer_id, q.service_type, q.currency_code,
		       q.requested_amount, q.status,
		       c.buy_rate, c.sell_rate, c.stock_amount, c.low_stock_threshold
		FROM queue_entries q
		JOIN currencies c ON c.code = q.currency_code
		WHERE q.id = $1
		FOR UPDATE
	`, queueID)
	if err != nil {
		return SettlementRow{}, err
	}
	return row, nil
}

func (s *QueueStore) MarkCompleted(ctx context.Context, tx Execer, queueID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = 'completed', completed_at = NOW()
		WHERE id = $1
	`, queueID)
	return err
}

// Cancel marks a still-open entry cancelled. Completed entries are immutable,
// so the guard is part of the statement and the affected count tells the
// caller whether anything changed.
func (s *QueueStore) Cancel(ctx context.Context, tx Execer, queueID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = 'cancelled', completed_at = NOW()
		WHERE id = $1 AND status IN ('waiting', 'processing')
	`, queueID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *QueueStore) GetByID(ctx context.Context, queueID string) (models.QueueEntry, error) {
	var row models.QueueEntry
	err := s.db.GetContext(ctx, &row, `
		SELECT id, ticket_number, customer_id, service_type, currency_code, requested_amount,
		       status, assigned_teller_id, created_at, called_at, completed_at
		FROM queue_entries
		WHERE id = $1
	`, queueID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	return row, nil
}
