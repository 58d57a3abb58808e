package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/gobooklib/internal/domain/model"
)

// statusColumns — список столбцов таблицы statuses для SELECT-запросов.
const statusColumns = `id, body, author, author_image, author_verified,
	is_quote, book_data, created_at, updated_at`

// commentColumns — список столбцов таблицы status_comments.
const commentColumns = `id, status_id, body, author, author_image, author_verified, created_at`

// StatusRepository — интерфейс доступа к статусам и их комментариям.
type StatusRepository interface {
	// Create добавляет статус.
	Create(ctx context.Context, s *model.Status) error
	// GetByID возвращает статус по id.
	GetByID(ctx context.Context, id int64) (*model.Status, error)
	// ListAll возвращает все статусы, новые — первыми.
	ListAll(ctx context.Context) ([]*model.Status, error)
	// UpdateBody обновляет текст статуса; только автор может редактировать.
	UpdateBody(ctx context.Context, id int64, author, body string) error
	// Delete удаляет статус вместе с комментариями; isAdmin обходит проверку автора.
	Delete(ctx context.Context, id int64, author string, isAdmin bool) error

	// CreateComment добавляет комментарий к статусу.
	CreateComment(ctx context.Context, c *model.Comment) error
	// ListComments возвращает комментарии статуса в порядке добавления.
	ListComments(ctx context.Context, statusID int64) ([]*model.Comment, error)
	// DeleteComment удаляет комментарий; isAdmin обходит проверку автора.
	DeleteComment(ctx context.Context, id int64, author string, isAdmin bool) error
}

// statusRepo — реализация StatusRepository через pgx.
type statusRepo struct {
	db DBTX
}

// NewStatusRepository создаёт репозиторий статусов.
func NewStatusRepository(db DBTX) StatusRepository {
	return &statusRepo{db: db}
}

// Create добавляет статус, id и метки времени назначает база.
func (r *statusRepo) Create(ctx context.Context, s *model.Status) error {
	query := `INSERT INTO statuses (body, author, author_image, author_verified, is_quote, book_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		s.Body, s.Author, s.AuthorImage, s.AuthorVerified, s.IsQuote, s.BookData,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка добавления статуса: %w", err)
	}
	return nil
}

// GetByID возвращает статус по id или ErrNotFound.
func (r *statusRepo) GetByID(ctx context.Context, id int64) (*model.Status, error) {
	query := fmt.Sprintf(`SELECT %s FROM statuses WHERE id = $1`, statusColumns)

	s := &model.Status{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Body, &s.Author, &s.AuthorImage, &s.AuthorVerified,
		&s.IsQuote, &s.BookData, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения статуса: %w", err)
	}
	return s, nil
}

// ListAll возвращает все статусы, новые — первыми.
func (r *statusRepo) ListAll(ctx context.Context) ([]*model.Status, error) {
	query := fmt.Sprintf(`SELECT %s FROM statuses ORDER BY created_at DESC, id DESC`, statusColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения статусов: %w", err)
	}
	defer rows.Close()

	var result []*model.Status
	for rows.Next() {
		s := &model.Status{}
		if err := rows.Scan(
			&s.ID, &s.Body, &s.Author, &s.AuthorImage, &s.AuthorVerified,
			&s.IsQuote, &s.BookData, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статуса: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// UpdateBody обновляет текст статуса. ErrNotFound, если статус не существует
// или принадлежит другому автору.
func (r *statusRepo) UpdateBody(ctx context.Context, id int64, author, body string) error {
	query := `UPDATE statuses SET body = $3, updated_at = now()
		WHERE id = $1 AND author = $2`

	tag, err := r.db.Exec(ctx, query, id, author, body)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет статус; комментарии каскадно удаляет база.
func (r *statusRepo) Delete(ctx context.Context, id int64, author string, isAdmin bool) error {
	query := `DELETE FROM statuses WHERE id = $1 AND (author = $2 OR $3)`

	tag, err := r.db.Exec(ctx, query, id, author, isAdmin)
	if err != nil {
		return fmt.Errorf("ошибка удаления статуса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateComment добавляет комментарий к статусу.
// ErrNotFound при ссылке на несуществующий статус (нарушение FK).
func (r *statusRepo) CreateComment(ctx context.Context, c *model.Comment) error {
	query := `INSERT INTO status_comments (status_id, body, author, author_image, author_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		c.StatusID, c.Body, c.Author, c.AuthorImage, c.AuthorVerified,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка добавления комментария: %w", err)
	}
	return nil
}

// ListComments возвращает комментарии статуса в порядке добавления.
func (r *statusRepo) ListComments(ctx context.Context, statusID int64) ([]*model.Comment, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM status_comments WHERE status_id = $1 ORDER BY id ASC`, commentColumns)

	rows, err := r.db.Query(ctx, query, statusID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения комментариев: %w", err)
	}
	defer rows.Close()

	var result []*model.Comment
	for rows.Next() {
		c := &model.Comment{}
		if err := rows.Scan(
			&c.ID, &c.StatusID, &c.Body, &c.Author, &c.AuthorImage, &c.AuthorVerified, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования комментария: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// DeleteComment удаляет комментарий.
func (r *statusRepo) DeleteComment(ctx context.Context, id int64, author string, isAdmin bool) error {
	query := `DELETE FROM status_comments WHERE id = $1 AND (author = $2 OR $3)`

	tag, err := r.db.Exec(ctx, query, id, author, isAdmin)
	if err != nil {
		return fmt.Errorf("ошибка удаления комментария: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
