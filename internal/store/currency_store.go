package store

import (
	"context"

	"bureau/internal/models"

	"github.com/shopspring/decimal"
)

type CurrencyStore struct {
	db DB
}

func NewCurrencyStore(db DB) *CurrencyStore {
	return &CurrencyStore{db: db}
}

func (s *CurrencyStore) List(ctx context.Context) ([]models.Currency, error) {
	var rows []models.Currency
	err := s.db.SelectContext(ctx, &rows, `
		SELECT code, name, flag_emoji, buy_rate, sell_rate, stock_amount, low_stock_threshold, is_available, updated_at
		FROM currencies
		ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CurrencyStore) GetByCode(ctx context.Context, code string) (models.Currency, error) {
	var row models.Currency
	err := s.db.GetContext(ctx, &row, `
		SELECT code, name, flag_emoji, buy_rate, sell_rate, stock_amount, low_stock_threshold, is_available, updated_at
		FROM currencies
		WHERE code = $1
	`, code)
	if err != nil {
		return models.Currency{}, err
	}
	return row, nil
}

// GetForUpdate reads rates and stock under an exclusive row lock so the
// read-compute-write of a settlement is serialized per currency.
func (s *CurrencyStore) GetForUpdate(ctx context.Context, tx Getter, code string) (models.Currency, error) {
	var row models.Currency
	err := tx.GetContext(ctx, &row, `
		SELECT code, name, flag_emoji, buy_rate, sell_rate, stock_amount, low_stock_threshold, is_available, updated_at
		FROM currencies
		WHERE code = $1
		FOR UPDATE
	`, code)
	if err != nil {
		return models.Currency{}, err
	}
	return row, nil
}

func (s *CurrencyStore) UpdateStock(ctx context.Context, tx Execer, code string, stock decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE currencies
		SET stock_amount = $1, updated_at = NOW()
		WHERE code = $2
	`, stock, code)
	return err
}

func (s *CurrencyStore) Upsert(ctx context.Context, tx Execer, currency models.Currency) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO currencies (code, name, flag_emoji, buy_rate, sell_rate, stock_amount, low_stock_threshold, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			flag_emoji = EXCLUDED.flag_emoji,
			buy_rate = EXCLUDED.buy_rate,
			sell_rate = EXCLUDED.sell_rate,
			stock_amount = EXCLUDED.stock_amount,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			is_available = EXCLUDED.is_available,
			updated_at = NOW()
	`, currency.Code, currency.Name, currency.FlagEmoji, currency.BuyRate, currency.SellRate,
		currency.StockAmount, currency.LowStockThreshold, currency.IsAvailable)
	return err
}
