package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/repository"
)

func testUser() *model.User {
	return &model.User{
		Email:    "reader@example.com",
		Name:     "Reader",
		Picture:  "https://pic.example/1.jpg",
		Verified: true,
	}
}

// --- Тесты StatusService ---

// TestStatusService_Create проверяет публикацию статуса с данными автора.
func TestStatusService_Create(t *testing.T) {
	var created *model.Status
	repo := &mockStatusRepo{
		createFn: func(_ context.Context, s *model.Status) error {
			created = s
			s.ID = 1
			return nil
		},
	}

	svc := NewStatusService(repo, &mockUserRepo{}, slog.Default())

	st, err := svc.Create(context.Background(), testUser(), "  Отличная книга!  ", false, nil)
	if err != nil {
		t.Fatalf("Create ошибка: %v", err)
	}

	if created == nil {
		t.Fatal("repo.Create не вызван")
	}
	if st.Body != "Отличная книга!" {
		t.Errorf("Body = %q, текст должен обрезаться", st.Body)
	}
	if st.Author != "reader@example.com" {
		t.Errorf("Author = %q, ожидался email пользователя", st.Author)
	}
	if !st.AuthorVerified {
		t.Error("AuthorVerified не скопирован из профиля")
	}
}

// TestStatusService_Create_Quote проверяет публикацию цитаты со снимком книги.
func TestStatusService_Create_Quote(t *testing.T) {
	repo := &mockStatusRepo{}
	svc := NewStatusService(repo, &mockUserRepo{}, slog.Default())

	bookData := []byte(`{"title":"Dune","fileId":"f-1"}`)
	st, err := svc.Create(context.Background(), testUser(), "Цитата", true, bookData)
	if err != nil {
		t.Fatalf("Create ошибка: %v", err)
	}
	if !st.IsQuote {
		t.Error("IsQuote = false")
	}
	if string(st.BookData) != string(bookData) {
		t.Errorf("BookData = %s, снимок книги потерян", st.BookData)
	}
}

// TestStatusService_Create_Validation проверяет отклонение пустого текста
// и заблокированных пользователей.
func TestStatusService_Create_Validation(t *testing.T) {
	svc := NewStatusService(&mockStatusRepo{}, &mockUserRepo{}, slog.Default())

	if _, err := svc.Create(context.Background(), testUser(), "   ", false, nil); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("пустой текст: ошибка = %v, ожидалась ErrEmptyBody", err)
	}

	banned := testUser()
	banned.Banned = true
	if _, err := svc.Create(context.Background(), banned, "text", false, nil); !errors.Is(err, ErrUserBanned) {
		t.Errorf("заблокированный автор: ошибка = %v, ожидалась ErrUserBanned", err)
	}
}

// TestStatusService_Create_TruncatesLongBody проверяет обрезание длинного текста.
func TestStatusService_Create_TruncatesLongBody(t *testing.T) {
	svc := NewStatusService(&mockStatusRepo{}, &mockUserRepo{}, slog.Default())

	long := strings.Repeat("я", maxBodyLength+100)
	st, err := svc.Create(context.Background(), testUser(), long, false, nil)
	if err != nil {
		t.Fatalf("Create ошибка: %v", err)
	}
	if got := len([]rune(st.Body)); got != maxBodyLength {
		t.Errorf("длина Body = %d рун, ожидался %d", got, maxBodyLength)
	}
}

// TestStatusService_List проверяет сбор ленты с комментариями.
func TestStatusService_List(t *testing.T) {
	repo := &mockStatusRepo{
		listAllFn: func(_ context.Context) ([]*model.Status, error) {
			return []*model.Status{
				{ID: 2, Body: "newer"},
				{ID: 1, Body: "older"},
			}, nil
		},
		listCommentsFn: func(_ context.Context, statusID int64) ([]*model.Comment, error) {
			if statusID == 2 {
				return []*model.Comment{{ID: 10, StatusID: 2, Body: "reply"}}, nil
			}
			return nil, nil
		},
	}

	svc := NewStatusService(repo, &mockUserRepo{}, slog.Default())

	feed, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List ошибка: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("лента из %d статусов, ожидался 2", len(feed))
	}
	if len(feed[0].Comments) != 1 || feed[0].Comments[0].Body != "reply" {
		t.Errorf("комментарии первого статуса = %+v, ожидался один", feed[0].Comments)
	}
	if len(feed[1].Comments) != 0 {
		t.Errorf("комментарии второго статуса = %+v, ожидался пустой список", feed[1].Comments)
	}
}

// TestStatusService_Update_NotOwner проверяет ErrStatusNotFound для чужого статуса.
func TestStatusService_Update_NotOwner(t *testing.T) {
	repo := &mockStatusRepo{
		updateBodyFn: func(_ context.Context, _ int64, _, _ string) error {
			return repository.ErrNotFound
		},
	}
	svc := NewStatusService(repo, &mockUserRepo{}, slog.Default())

	err := svc.Update(context.Background(), testUser(), 99, "new text")
	if !errors.Is(err, ErrStatusNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrStatusNotFound", err)
	}
}

// TestStatusService_Delete_AdminFlag проверяет проброс флага администратора.
func TestStatusService_Delete_AdminFlag(t *testing.T) {
	var gotAdmin bool
	repo := &mockStatusRepo{
		deleteFn: func(_ context.Context, _ int64, _ string, isAdmin bool) error {
			gotAdmin = isAdmin
			return nil
		},
	}
	svc := NewStatusService(repo, &mockUserRepo{}, slog.Default())

	if err := svc.Delete(context.Background(), testUser(), 1, true); err != nil {
		t.Fatalf("Delete ошибка: %v", err)
	}
	if !gotAdmin {
		t.Error("флаг администратора не проброшен в репозиторий")
	}
}

// TestStatusService_AddComment_MissingStatus проверяет ErrStatusNotFound
// при комментарии к несуществующему статусу.
func TestStatusService_AddComment_MissingStatus(t *testing.T) {
	repo := &mockStatusRepo{
		createCommentFn: func(_ context.Context, _ *model.Comment) error {
			return repository.ErrNotFound
		},
	}
	svc := NewStatusService(repo, &mockUserRepo{}, slog.Default())

	_, err := svc.AddComment(context.Background(), testUser(), 42, "комментарий")
	if !errors.Is(err, ErrStatusNotFound) {
		t.Errorf("ошибка = %v, ожидалась ErrStatusNotFound", err)
	}
}
