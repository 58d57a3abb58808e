// statuses.go — сервис статусов (лента читателей) и комментариев.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/repository"
)

// Ошибки статусов.
var (
	// ErrStatusNotFound — статус или комментарий не найден,
	// либо операция запрещена (не автор и не администратор).
	ErrStatusNotFound = errors.New("статус не найден")
	// ErrEmptyBody — пустой текст статуса или комментария.
	ErrEmptyBody = errors.New("текст не может быть пустым")
	// ErrUserBanned — заблокированный пользователь не может публиковать.
	ErrUserBanned = errors.New("пользователь заблокирован")
)

// Максимальная длина текста статуса и комментария.
const maxBodyLength = 2000

// StatusWithComments — статус вместе с комментариями для ленты.
type StatusWithComments struct {
	*model.Status
	Comments []*model.Comment
}

// StatusService — сервис ленты статусов.
type StatusService struct {
	statusRepo repository.StatusRepository
	userRepo   repository.UserRepository
	logger     *slog.Logger
}

// NewStatusService создаёт сервис статусов.
func NewStatusService(
	statusRepo repository.StatusRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *StatusService {
	return &StatusService{
		statusRepo: statusRepo,
		userRepo:   userRepo,
		logger:     logger.With(slog.String("component", "status_service")),
	}
}

// Create публикует статус от имени пользователя.
// bookData — снимок книги для цитат (nil для обычных статусов).
func (s *StatusService) Create(ctx context.Context, user *model.User, body string, isQuote bool, bookData []byte) (*model.Status, error) {
	body, err := s.validateBody(user, body)
	if err != nil {
		return nil, err
	}

	st := &model.Status{
		Body:           body,
		Author:         user.Email,
		AuthorImage:    user.Picture,
		AuthorVerified: user.Verified,
		IsQuote:        isQuote,
		BookData:       bookData,
	}
	if err := s.statusRepo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("публикация статуса: %w", err)
	}

	s.logger.Info("Статус опубликован",
		slog.Int64("status_id", st.ID),
		slog.String("author", st.Author),
		slog.Bool("quote", st.IsQuote),
	)
	return st, nil
}

// List возвращает ленту статусов с комментариями, новые — первыми.
func (s *StatusService) List(ctx context.Context) ([]*StatusWithComments, error) {
	statuses, err := s.statusRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение ленты статусов: %w", err)
	}

	result := make([]*StatusWithComments, 0, len(statuses))
	for _, st := range statuses {
		comments, err := s.statusRepo.ListComments(ctx, st.ID)
		if err != nil {
			return nil, fmt.Errorf("чтение комментариев статуса %d: %w", st.ID, err)
		}
		result = append(result, &StatusWithComments{Status: st, Comments: comments})
	}
	return result, nil
}

// Update редактирует текст собственного статуса.
func (s *StatusService) Update(ctx context.Context, user *model.User, id int64, body string) error {
	body, err := s.validateBody(user, body)
	if err != nil {
		return err
	}

	if err := s.statusRepo.UpdateBody(ctx, id, user.Email, body); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStatusNotFound
		}
		return fmt.Errorf("редактирование статуса: %w", err)
	}
	return nil
}

// Delete удаляет статус. Автор удаляет свои, администратор — любые.
func (s *StatusService) Delete(ctx context.Context, user *model.User, id int64, isAdmin bool) error {
	if err := s.statusRepo.Delete(ctx, id, user.Email, isAdmin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStatusNotFound
		}
		return fmt.Errorf("удаление статуса: %w", err)
	}

	s.logger.Info("Статус удалён",
		slog.Int64("status_id", id),
		slog.String("by", user.Email),
		slog.Bool("admin", isAdmin),
	)
	return nil
}

// AddComment добавляет комментарий к статусу.
func (s *StatusService) AddComment(ctx context.Context, user *model.User, statusID int64, body string) (*model.Comment, error) {
	body, err := s.validateBody(user, body)
	if err != nil {
		return nil, err
	}

	c := &model.Comment{
		StatusID:       statusID,
		Body:           body,
		Author:         user.Email,
		AuthorImage:    user.Picture,
		AuthorVerified: user.Verified,
	}
	if err := s.statusRepo.CreateComment(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("добавление комментария: %w", err)
	}
	return c, nil
}

// DeleteComment удаляет комментарий. Автор удаляет свои, администратор — любые.
func (s *StatusService) DeleteComment(ctx context.Context, user *model.User, id int64, isAdmin bool) error {
	if err := s.statusRepo.DeleteComment(ctx, id, user.Email, isAdmin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStatusNotFound
		}
		return fmt.Errorf("удаление комментария: %w", err)
	}
	return nil
}

// validateBody проверяет права пользователя и нормализует текст.
func (s *StatusService) validateBody(user *model.User, body string) (string, error) {
	if user.Banned {
		return "", ErrUserBanned
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyBody
	}
	if len(body) > maxBodyLength {
		runes := []rune(body)
		if len(runes) > maxBodyLength {
			body = string(runes[:maxBodyLength])
		}
	}
	return body, nil
}
