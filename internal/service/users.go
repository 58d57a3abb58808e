// users.go — сервис пользователей: вход через Google и админ-операции.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/repository"
)

// Ошибки пользовательского сервиса.
var (
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("пользователь не найден")
)

// UserService — сервис пользователей.
type UserService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

// Login регистрирует вход пользователя через Google: создаёт запись при
// первом входе, обновляет профиль и last_login при повторном.
// Заблокированный пользователь получает ErrUserBanned.
func (s *UserService) Login(ctx context.Context, email, name, picture string) (*model.User, error) {
	u := &model.User{Email: email, Name: name, Picture: picture}
	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("вход пользователя: %w", err)
	}
	if u.Banned {
		return nil, ErrUserBanned
	}

	s.logger.Info("Пользователь вошёл",
		slog.String("email", u.Email),
		slog.Bool("verified", u.Verified),
	)
	return u, nil
}

// GetByEmail возвращает пользователя по email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

// ListAll возвращает всех пользователей (админ-панель).
func (s *UserService) ListAll(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение пользователей: %w", err)
	}
	return users, nil
}

// SetVerified выставляет флаг верификации пользователя (админ-операция).
func (s *UserService) SetVerified(ctx context.Context, email string, verified bool) error {
	if err := s.userRepo.SetVerified(ctx, email, verified); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("изменение верификации: %w", err)
	}

	s.logger.Info("Верификация пользователя изменена",
		slog.String("email", email),
		slog.Bool("verified", verified),
	)
	return nil
}

// SetBanned выставляет флаг блокировки пользователя (админ-операция).
func (s *UserService) SetBanned(ctx context.Context, email string, banned bool) error {
	if err := s.userRepo.SetBanned(ctx, email, banned); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("изменение блокировки: %w", err)
	}

	s.logger.Info("Блокировка пользователя изменена",
		slog.String("email", email),
		slog.Bool("banned", banned),
	)
	return nil
}
