package store

import (
	"context"

	"bureau/internal/models"
)

type CustomerStore struct {
	db DB
}

func NewCustomerStore(db DB) *CustomerStore {
	return &CustomerStore{db: db}
}

type CustomerInput struct {
	ID          string
	FullName    string
	PhoneNumber string
	IDType      string
	IDNumber    string
}

// FindOrCreate deduplicates customers by identity-document number. The
// conflict-tolerant insert means two admissions racing on the same new
// id_number both land on a single row.
func (s *CustomerStore) FindOrCreate(ctx context.Context, tx Tx, input CustomerInput) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, `
		INSERT INTO customers (id, full_name, phone_number, id_type, id_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id_number) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone_number = EXCLUDED.phone_number,
			id_type = EXCLUDED.id_type
		RETURNING id
	`, input.ID, input.FullName, input.PhoneNumber, input.IDType, input.IDNumber)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *CustomerStore) GetByID(ctx context.Context, customerID string) (models.Customer, error) {
	var row models.Customer
	err := s.db.GetContext(ctx, &row, `
		SELECT id, full_name, phone_number, id_type, id_number, created_at
		FROM customers
		WHERE id = $1
	`, customerID)
	if err != nil {
		return models.Customer{}, err
	}
	return row, nil
}

func (s *CustomerStore) GetByIDNumber(ctx context.Context, idNumber string) (models.Customer, error) {
	var row models.Customer
	err := s.db.GetContext(ctx, &row, `
		SELECT id, full_name, phone_number, id_type, id_number, created_at
		FROM customers
		WHERE id_number = $1
	`, idNumber)
	if err != nil {
		return models.Customer{}, err
	}
	return row, nil
}
