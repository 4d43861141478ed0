package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"householdledger/internal/domain"
)

type userService struct {
	userRepo     domain.UserRepository
	settingsRepo domain.UserSettingsRepository
}

// NewUserService creates a UserService with the given repositories.
func NewUserService(userRepo domain.UserRepository, settingsRepo domain.UserSettingsRepository) domain.UserService {
	return &userService{userRepo: userRepo, settingsRepo: settingsRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, user *domain.User) error {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if user.Email != "" && !emailRegexp.MatchString(user.Email) {
		return domain.ErrInvalidInput
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *userService) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	settings, err := s.settingsRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultUserSettings(userID), nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

func (s *userService) UpdateSettings(ctx context.Context, settings *domain.UserSettings) error {
	settings.Currency = strings.ToUpper(strings.TrimSpace(settings.Currency))
	if len(settings.Currency) != 3 {
		return domain.ErrInvalidInput
	}
	if settings.Locale == "" {
		settings.Locale = domain.DefaultUserSettings(settings.UserID).Locale
	}
	settings.UpdatedAt = time.Now()
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
