package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID            string
	Reference     string
	QueueID       string
	TellerID      string
	CustomerID    string
	Type          string
	CurrencyCode  string
	AmountForeign decimal.Decimal
	ExchangeRate  decimal.Decimal
	AmountLocal   decimal.Decimal
	IsSuspicious  bool
}

type TransactionWithCustomer struct {
	ID            string          `db:"id" json:"id"`
	Reference     string          `db:"reference" json:"reference"`
	QueueID       string          `db:"queue_id" json:"queue_id"`
	TellerID      string          `db:"teller_id" json:"teller_id"`
	CustomerID    string          `db:"customer_id" json:"customer_id"`
	Type          string          `db:"type" json:"type"`
	CurrencyCode  string          `db:"currency_code" json:"currency_code"`
	AmountForeign decimal.Decimal `db:"amount_foreign" json:"amount_foreign"`
	ExchangeRate  decimal.Decimal `db:"exchange_rate" json:"exchange_rate"`
	AmountLocal   decimal.Decimal `db:"amount_local" json:"amount_local"`
	IsSuspicious  bool            `db:"is_suspicious" json:"is_suspicious"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	CustomerName  string          `db:"full_name" json:"customer_name"`
}

type TellerDayStats struct {
	ServedCount int             `db:"served_count" json:"served_count"`
	LocalTotal  decimal.Decimal `db:"local_total" json:"local_total"`
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, reference, queue_id, teller_id, customer_id, type, currency_code,
		                          amount_foreign, exchange_rate, amount_local, is_suspicious)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, input.ID, input.Reference, input.QueueID, input.TellerID, input.CustomerID, input.Type,
		input.CurrencyCode, input.AmountForeign, input.ExchangeRate, input.AmountLocal, input.IsSuspicious)
	return err
}

func (s *TransactionStore) ListByTeller(ctx context.Context, tellerID string, limit int) ([]TransactionWithCustomer, error) {
	var rows []TransactionWithCustomer
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.reference, t.queue_id, t.teller_id, t.customer_id, t.type, t.currency_code,
		       t.amount_foreign, t.exchange_rate, t.amount_local, t.is_suspicious, t.created_at,
		       c.full_name
		FROM transactions t
		JOIN customers c ON c.id = t.customer_id
		WHERE t.teller_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`, tellerID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) TellerStatsToday(ctx context.Context, tellerID string) (TellerDayStats, error) {
	var row TellerDayStats
	err := s.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS served_count,
		       COALESCE(SUM(amount_local), 0) AS local_total
		FROM transactions
		WHERE teller_id = $1 AND created_at::date = CURRENT_DATE
	`, tellerID)
	if err != nil {
		return TellerDayStats{}, err
	}
	return row, nil
}
