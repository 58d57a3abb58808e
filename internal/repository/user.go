package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/gobooklib/internal/domain/model"
)

// userColumns — список столбцов таблицы users для SELECT-запросов.
const userColumns = `email, name, picture, verified, banned, created_at, last_login`

// UserRepository — интерфейс доступа к пользователям.
type UserRepository interface {
	// Upsert создаёт пользователя или обновляет профиль и last_login при повторном входе.
	Upsert(ctx context.Context, u *model.User) error
	// GetByEmail возвращает пользователя по email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ListAll возвращает всех пользователей (для админ-панели).
	ListAll(ctx context.Context) ([]*model.User, error)
	// SetVerified выставляет флаг верификации и обновляет снимки
	// author_verified в статусах и комментариях автора.
	SetVerified(ctx context.Context, email string, verified bool) error
	// SetBanned выставляет флаг блокировки.
	SetBanned(ctx context.Context, email string, banned bool) error
}

// userRepo — реализация UserRepository через pgx.
type userRepo struct {
	db DBTX
	tx *TxRunner
}

// NewUserRepository создаёт репозиторий пользователей.
// Пул нужен целиком: смена флага verified идёт в транзакции
// по трём таблицам сразу.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepo{db: pool, tx: NewTxRunner(pool)}
}

// Upsert создаёт пользователя при первом входе через Google
// или обновляет имя, аватар и last_login при повторном.
// Флаги verified и banned при повторном входе не трогаются.
func (r *userRepo) Upsert(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (email, name, picture)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, picture = EXCLUDED.picture, last_login = now()
		RETURNING verified, banned, created_at, last_login`

	err := r.db.QueryRow(ctx, query, u.Email, u.Name, u.Picture).
		Scan(&u.Verified, &u.Banned, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		return fmt.Errorf("ошибка сохранения пользователя: %w", err)
	}
	return nil
}

// GetByEmail возвращает пользователя по email или ErrNotFound.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	u := &model.User{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.Email, &u.Name, &u.Picture, &u.Verified, &u.Banned, &u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

// ListAll возвращает всех пользователей, новые — первыми.
func (r *userRepo) ListAll(ctx context.Context) ([]*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC`, userColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователей: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(
			&u.Email, &u.Name, &u.Picture, &u.Verified, &u.Banned, &u.CreatedAt, &u.LastLogin,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// SetVerified выставляет флаг верификации пользователя.
// Статусы и комментарии хранят снимок флага в author_verified,
// поэтому все три таблицы обновляются в одной транзакции.
func (r *userRepo) SetVerified(ctx context.Context, email string, verified bool) error {
	return r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET verified = $2 WHERE email = $1`, email, verified)
		if err != nil {
			return fmt.Errorf("ошибка обновления пользователя: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx,
			`UPDATE statuses SET author_verified = $2 WHERE author = $1`, email, verified); err != nil {
			return fmt.Errorf("ошибка обновления статусов автора: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE status_comments SET author_verified = $2 WHERE author = $1`, email, verified); err != nil {
			return fmt.Errorf("ошибка обновления комментариев автора: %w", err)
		}
		return nil
	})
}

// SetBanned выставляет флаг блокировки пользователя.
func (r *userRepo) SetBanned(ctx context.Context, email string, banned bool) error {
	return r.setFlag(ctx, email, "banned", banned)
}

// setFlag обновляет булев столбец column.
// column подставляется только из фиксированного набора вызовов выше.
func (r *userRepo) setFlag(ctx context.Context, email, column string, value bool) error {
	query := fmt.Sprintf(`UPDATE users SET %s = $2 WHERE email = $1`, column)

	tag, err := r.db.Exec(ctx, query, email, value)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
