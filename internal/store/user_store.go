package store

import (
	"context"

	"bureau/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type UserInput struct {
	ID            string
	Username      string
	PasswordHash  string
	FullName      string
	Role          string
	StationNumber *int
}

func (s *UserStore) Create(ctx context.Context, tx Execer, input UserInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, full_name, role, station_number)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, input.ID, input.Username, input.PasswordHash, input.FullName, input.Role, input.StationNumber)
	return err
}

func (s *UserStore) GetActiveByUsername(ctx context.Context, username string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, password_hash, full_name, role, station_number, is_active, created_at
		FROM users
		WHERE username = $1 AND is_active = TRUE
	`, username)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, password_hash, full_name, role, station_number, is_active, created_at
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}
