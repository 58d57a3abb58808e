package model

import "time"

// Status — публикация пользователя в ленте (статус или цитата из книги).
type Status struct {
	// ID — идентификатор, назначается базой.
	ID int64
	// Body — текст статуса.
	Body string
	// Author — имя или email автора (владение проверяется по этому полю).
	Author string
	// AuthorImage — аватар автора на момент публикации.
	AuthorImage string
	// AuthorVerified — снимок флага verified автора; при смене флага
	// в профиле снимки обновляются вместе с ним.
	AuthorVerified bool
	// IsQuote — статус является цитатой из книги.
	IsQuote bool
	// BookData — сериализованные данные книги для цитат (JSON), nil для обычных статусов.
	BookData []byte
	// CreatedAt — время публикации.
	CreatedAt time.Time
	// UpdatedAt — время последнего редактирования.
	UpdatedAt time.Time
}

// Comment — комментарий к статусу.
type Comment struct {
	// ID — идентификатор, назначается базой.
	ID int64
	// StatusID — идентификатор родительского статуса.
	StatusID int64
	// Body — текст комментария.
	Body string
	// Author — имя или email автора.
	Author string
	// AuthorImage — аватар автора.
	AuthorImage string
	// AuthorVerified — снимок флага verified автора, обновляется
	// вместе с профилем.
	AuthorVerified bool
	// CreatedAt — время публикации.
	CreatedAt time.Time
}
