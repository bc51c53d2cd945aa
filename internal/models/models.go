package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            string    `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	FullName      string    `db:"full_name" json:"full_name"`
	Role          string    `db:"role" json:"role"`
	StationNumber *int      `db:"station_number" json:"station_number,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Currency struct {
	Code              string          `db:"code" json:"code"`
	Name              string          `db:"name" json:"name"`
	FlagEmoji         string          `db:"flag_emoji" json:"flag_emoji"`
	BuyRate           decimal.Decimal `db:"buy_rate" json:"buy_rate"`
	SellRate          decimal.Decimal `db:"sell_rate" json:"sell_rate"`
	StockAmount       decimal.Decimal `db:"stock_amount" json:"stock_amount"`
	LowStockThreshold decimal.Decimal `db:"low_stock_threshold" json:"low_stock_threshold"`
	IsAvailable       bool            `db:"is_available" json:"is_available"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

type Customer struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	IDType      string    `db:"id_type" json:"id_type"`
	IDNumber    string    `db:"id_number" json:"id_number"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	ServiceBuy  = "buy"
	ServiceSell = "sell"
)

const (
	StatusWaiting    = "waiting"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type QueueEntry struct {
	ID               string          `db:"id" json:"id"`
	TicketNumber     string          `db:"ticket_number" json:"ticket_number"`
	CustomerID       string          `db:"customer_id" json:"customer_id"`
	ServiceType      string          `db:"service_type" json:"service_type"`
	CurrencyCode     string          `db:"currency_code" json:"currency_code"`
	RequestedAmount  decimal.Decimal `db:"requested_amount" json:"requested_amount"`
	Status           string          `db:"status" json:"status"`
	AssignedTellerID *string         `db:"assigned_teller_id" json:"assigned_teller_id,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	CalledAt         *time.Time      `db:"called_at" json:"called_at,omitempty"`
	CompletedAt      *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// Transaction is an immutable snapshot of the settled terms; later rate or
// stock changes never alter it.
type Transaction struct {
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
}

type Notification struct {
	ID            string    `db:"id" json:"id"`
	Type          string    `db:"type" json:"type"`
	Message       string    `db:"message" json:"message"`
	RecipientRole string    `db:"recipient_role" json:"recipient_role"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
