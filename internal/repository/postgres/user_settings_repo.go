package postgres

import (
	"context"
	"database/sql"
	"errors"

	"householdledger/internal/domain"
)

type userSettingsRepository struct {
	DB *sql.DB
}

func NewUserSettingsRepository(db *sql.DB) domain.UserSettingsRepository {
	return &userSettingsRepository{DB: db}
}

func (r *userSettingsRepository) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	query := `
		SELECT user_id, currency, locale, dark_mode, updated_at
		FROM user_settings
		WHERE user_id = $1
	`
	s := &domain.UserSettings{}
	err := r.DB.QueryRowContext(ctx, query, userID).
		Scan(&s.UserID, &s.Currency, &s.Locale, &s.DarkMode, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *userSettingsRepository) Upsert(ctx context.Context, s *domain.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, currency, locale, dark_mode, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET currency = EXCLUDED.currency, locale = EXCLUDED.locale,
		    dark_mode = EXCLUDED.dark_mode, updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, s.UserID, s.Currency, s.Locale, s.DarkMode, s.UpdatedAt)
	return err
}
