package model

import "time"

// User — пользователь, вошедший через Google OAuth.
// Email — первичный ключ (sub Google не хранится).
type User struct {
	// Email — адрес из Google ID token.
	Email string
	// Name — отображаемое имя.
	Name string
	// Picture — URL аватара Google ("" если не передан).
	Picture string
	// Verified — флаг «проверенный автор» (выставляется админом).
	Verified bool
	// Banned — заблокированный пользователь (login отклоняется).
	Banned bool
	// CreatedAt — время первого входа.
	CreatedAt time.Time
	// LastLogin — время последнего входа.
	LastLogin time.Time
}
