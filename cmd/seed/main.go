// Seeds the branch with its currency inventory and an initial admin user.
// Reruns update rates and stock in place.
package main

import (
	"context"
	"log"

	"bureau/internal/auth"
	"bureau/internal/config"
	"bureau/internal/db"
	"bureau/internal/models"
	"bureau/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type seedCurrency struct {
	code      string
	name      string
	flag      string
	buy       string
	sell      string
	stock     string
	threshold string
}

var currencies = []seedCurrency{
	{"USD", "US Dollar", "🇺🇸", "2520", "2480", "150000", "10000"},
	{"EUR", "Euro", "🇪🇺", "2750", "2700", "80000", "8000"},
	{"GBP", "British Pound", "🇬🇧", "3180", "3120", "45000", "5000"},
	{"AED", "UAE Dirham", "🇦🇪", "686", "675", "200000", "20000"},
	{"SAR", "Saudi Riyal", "🇸🇦", "672", "660", "0", "10000"},
	{"KES", "Kenyan Shilling", "🇰🇪", "19.5", "18.8", "5000000", "500000"},
}

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	currencyStore := store.NewCurrencyStore(database)
	userStore := store.NewUserStore(database)
	txRunner := db.NewTxRunner(database)

	err = txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, c := range currencies {
			currency := models.Currency{
				Code:              c.code,
				Name:              c.name,
				FlagEmoji:         c.flag,
				BuyRate:           mustDecimal(c.buy),
				SellRate:          mustDecimal(c.sell),
				StockAmount:       mustDecimal(c.stock),
				LowStockThreshold: mustDecimal(c.threshold),
				IsAvailable:       true,
			}
			if err := currencyStore.Upsert(ctx, tx, currency); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seeding currencies failed: %v", err)
	}
	log.Println("currencies seeded")

	adminUsername := "admin"
	if _, err := userStore.GetActiveByUsername(ctx, adminUsername); err == nil {
		log.Println("admin user already present")
		return
	}
	passwordHash, err := auth.HashPassword("admin12345")
	if err != nil {
		log.Fatalf("hashing admin password failed: %v", err)
	}
	err = txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return userStore.Create(ctx, tx, store.UserInput{
			ID:           uuid.NewString(),
			Username:     adminUsername,
			PasswordHash: passwordHash,
			FullName:     "Branch Administrator",
			Role:         "admin",
		})
	})
	if err != nil {
		log.Fatalf("seeding admin user failed: %v", err)
	}
	log.Println("admin user seeded (change the default password)")
}

func mustDecimal(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		log.Fatalf("bad seed value %q: %v", raw, err)
	}
	return value
}
