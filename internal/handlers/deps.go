package handlers

import (
	"context"

	"bureau/internal/models"
	"bureau/internal/services"
	"bureau/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UserInput) error
	GetActiveByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type CurrencyStore interface {
	List(ctx context.Context) ([]models.Currency, error)
	Upsert(ctx context.Context, tx store.Execer, currency models.Currency) error
}

type NotificationStore interface {
	ListByRole(ctx context.Context, recipientRole string, limit, offset int) ([]models.Notification, error)
}

type AuditStore interface {
	Log(ctx context.Context, actorID *string, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type QueueService interface {
	Admit(ctx context.Context, req services.AdmitRequest) (services.AdmitResult, error)
	ListActive(ctx context.Context) ([]store.ActiveEntry, error)
	ClaimNext(ctx context.Context, tellerID string) (models.QueueEntry, error)
	Cancel(ctx context.Context, queueID, actorID string) error
}

type SettlementService interface {
	Settle(ctx context.Context, req services.SettleRequest) (models.Transaction, error)
	History(ctx context.Context, tellerID string) ([]store.TransactionWithCustomer, error)
	DashboardStats(ctx context.Context, tellerID string) (store.TellerDayStats, error)
}
