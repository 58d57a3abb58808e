package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/gobooklib/internal/domain/model"
)

// bookColumns — список столбцов таблицы books для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const bookColumns = `id, file_id, title, description, categories, filename,
	file_url, image_url, message_link, channel_id, message_id, is_large_file,
	view_count, download_count, created_at, updated_at`

// BookRepository — интерфейс доступа к каталогу книг.
type BookRepository interface {
	// Create добавляет книгу в каталог. ErrConflict при дубликате file_id.
	Create(ctx context.Context, b *model.Book) error
	// GetByFileID возвращает книгу по file_id.
	GetByFileID(ctx context.Context, fileID string) (*model.Book, error)
	// ListAll возвращает весь каталог в порядке добавления.
	ListAll(ctx context.Context) ([]*model.Book, error)
	// Update обновляет редактируемые поля книги (title, description, categories, image_url).
	Update(ctx context.Context, b *model.Book) error
	// Delete удаляет книгу из каталога.
	Delete(ctx context.Context, fileID string) error
	// IncrementViews атомарно увеличивает счётчик просмотров.
	IncrementViews(ctx context.Context, fileID string) (int64, error)
	// IncrementDownloads атомарно увеличивает счётчик скачиваний.
	IncrementDownloads(ctx context.Context, fileID string) (int64, error)
	// RemoveCategory убирает категорию у всех книг. Возвращает число затронутых книг.
	RemoveCategory(ctx context.Context, category string) (int64, error)
}

// bookRepo — реализация BookRepository через pgx.
type bookRepo struct {
	db DBTX
}

// NewBookRepository создаёт репозиторий книг.
func NewBookRepository(db DBTX) BookRepository {
	return &bookRepo{db: db}
}

// Create добавляет книгу в каталог.
// id (порядок добавления) назначается базой, created_at/updated_at — now().
func (r *bookRepo) Create(ctx context.Context, b *model.Book) error {
	query := `INSERT INTO books (file_id, title, description, categories, filename,
		file_url, image_url, message_link, channel_id, message_id, is_large_file)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		b.FileID, b.Title, b.Description, b.Categories, b.Filename,
		b.FileURL, b.ImageURL, b.MessageLink, b.ChannelID, b.MessageID, b.IsLargeFile,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка добавления книги: %w", err)
	}
	return nil
}

// GetByFileID возвращает книгу по file_id или ErrNotFound.
func (r *bookRepo) GetByFileID(ctx context.Context, fileID string) (*model.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE file_id = $1`, bookColumns)

	b := &model.Book{}
	err := scanBook(r.db.QueryRow(ctx, query, fileID), b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения книги: %w", err)
	}
	return b, nil
}

// ListAll возвращает весь каталог в порядке добавления (id ASC).
func (r *bookRepo) ListAll(ctx context.Context) ([]*model.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books ORDER BY id ASC`, bookColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога: %w", err)
	}
	defer rows.Close()

	var result []*model.Book
	for rows.Next() {
		b := &model.Book{}
		if err := scanBook(rows, b); err != nil {
			return nil, fmt.Errorf("ошибка сканирования книги: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// Update обновляет редактируемые поля книги.
func (r *bookRepo) Update(ctx context.Context, b *model.Book) error {
	query := `UPDATE books
		SET title = $2, description = $3, categories = $4, image_url = $5,
			updated_at = now()
		WHERE file_id = $1`

	tag, err := r.db.Exec(ctx, query,
		b.FileID, b.Title, b.Description, b.Categories, b.ImageURL)
	if err != nil {
		return fmt.Errorf("ошибка обновления книги: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет книгу из каталога.
func (r *bookRepo) Delete(ctx context.Context, fileID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("ошибка удаления книги: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews атомарно увеличивает view_count и возвращает новое значение.
func (r *bookRepo) IncrementViews(ctx context.Context, fileID string) (int64, error) {
	return r.increment(ctx, fileID, "view_count")
}

// IncrementDownloads атомарно увеличивает download_count и возвращает новое значение.
func (r *bookRepo) IncrementDownloads(ctx context.Context, fileID string) (int64, error) {
	return r.increment(ctx, fileID, "download_count")
}

// increment выполняет атомарный инкремент счётчика column.
// column подставляется только из фиксированного набора вызовов выше.
func (r *bookRepo) increment(ctx context.Context, fileID, column string) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE books SET %s = %s + 1 WHERE file_id = $1 RETURNING %s`,
		column, column, column)

	var count int64
	err := r.db.QueryRow(ctx, query, fileID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("ошибка инкремента счётчика: %w", err)
	}
	return count, nil
}

// RemoveCategory убирает категорию у всех книг, где она встречается.
func (r *bookRepo) RemoveCategory(ctx context.Context, category string) (int64, error) {
	query := `UPDATE books
		SET categories = array_remove(categories, $1), updated_at = now()
		WHERE $1 = ANY(categories)`

	tag, err := r.db.Exec(ctx, query, category)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления категории: %w", err)
	}
	return tag.RowsAffected(), nil
}

// rowScanner — общий интерфейс pgx.Row и pgx.Rows для scanBook.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBook сканирует строку books в model.Book.
func scanBook(row rowScanner, b *model.Book) error {
	return row.Scan(
		&b.ID, &b.FileID, &b.Title, &b.Description, &b.Categories, &b.Filename,
		&b.FileURL, &b.ImageURL, &b.MessageLink, &b.ChannelID, &b.MessageID, &b.IsLargeFile,
		&b.ViewCount, &b.DownloadCount, &b.CreatedAt, &b.UpdatedAt,
	)
}
