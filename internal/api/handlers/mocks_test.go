package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/repository"
	"github.com/bigkaa/gobooklib/internal/service"
	"github.com/bigkaa/gobooklib/internal/ui/auth"
)

// mockBookRepo — мок BookRepository с переопределяемыми функциями.
type mockBookRepo struct {
	books []*model.Book
}

func (m *mockBookRepo) Create(_ context.Context, b *model.Book) error {
	m.books = append(m.books, b)
	return nil
}

func (m *mockBookRepo) GetByFileID(_ context.Context, fileID string) (*model.Book, error) {
	for _, b := range m.books {
		if b.FileID == fileID {
			return b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockBookRepo) ListAll(_ context.Context) ([]*model.Book, error) {
	return m.books, nil
}

func (m *mockBookRepo) Update(_ context.Context, b *model.Book) error {
	for _, existing := range m.books {
		if existing.FileID == b.FileID {
			existing.Title = b.Title
			existing.Description = b.Description
			existing.Categories = b.Categories
			existing.ImageURL = b.ImageURL
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockBookRepo) Delete(_ context.Context, fileID string) error {
	for i, b := range m.books {
		if b.FileID == fileID {
			m.books = append(m.books[:i], m.books[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockBookRepo) IncrementViews(_ context.Context, fileID string) (int64, error) {
	for _, b := range m.books {
		if b.FileID == fileID {
			b.ViewCount++
			return b.ViewCount, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (m *mockBookRepo) IncrementDownloads(_ context.Context, fileID string) (int64, error) {
	for _, b := range m.books {
		if b.FileID == fileID {
			b.DownloadCount++
			return b.DownloadCount, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (m *mockBookRepo) RemoveCategory(_ context.Context, category string) (int64, error) {
	var affected int64
	for _, b := range m.books {
		kept := b.Categories[:0]
		removed := false
		for _, c := range b.Categories {
			if c == category {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		if removed {
			b.Categories = kept
			affected++
		}
	}
	return affected, nil
}

// mockUserRepo — мок UserRepository поверх map.
type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Upsert(_ context.Context, u *model.User) error {
	if existing, ok := m.users[u.Email]; ok {
		existing.Name = u.Name
		existing.Picture = u.Picture
		*u = *existing
		return nil
	}
	u.CreatedAt = time.Now()
	u.LastLogin = time.Now()
	m.users[u.Email] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) ListAll(_ context.Context) ([]*model.User, error) {
	result := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockUserRepo) SetVerified(_ context.Context, email string, verified bool) error {
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Verified = verified
	return nil
}

func (m *mockUserRepo) SetBanned(_ context.Context, email string, banned bool) error {
	u, ok := m.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Banned = banned
	return nil
}

// mockStatusRepo — мок StatusRepository поверх слайсов.
type mockStatusRepo struct {
	statuses []*model.Status
	comments []*model.Comment
	nextID   int64
}

func newMockStatusRepo() *mockStatusRepo {
	return &mockStatusRepo{nextID: 1}
}

func (m *mockStatusRepo) Create(_ context.Context, s *model.Status) error {
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.statuses = append(m.statuses, s)
	return nil
}

func (m *mockStatusRepo) GetByID(_ context.Context, id int64) (*model.Status, error) {
	for _, s := range m.statuses {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockStatusRepo) ListAll(_ context.Context) ([]*model.Status, error) {
	return m.statuses, nil
}

func (m *mockStatusRepo) UpdateBody(_ context.Context, id int64, author, body string) error {
	for _, s := range m.statuses {
		if s.ID == id && s.Author == author {
			s.Body = body
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockStatusRepo) Delete(_ context.Context, id int64, author string, isAdmin bool) error {
	for i, s := range m.statuses {
		if s.ID == id && (s.Author == author || isAdmin) {
			m.statuses = append(m.statuses[:i], m.statuses[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockStatusRepo) CreateComment(_ context.Context, c *model.Comment) error {
	if _, err := m.GetByID(context.Background(), c.StatusID); err != nil {
		return repository.ErrNotFound
	}
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	m.comments = append(m.comments, c)
	return nil
}

func (m *mockStatusRepo) ListComments(_ context.Context, statusID int64) ([]*model.Comment, error) {
	var result []*model.Comment
	for _, c := range m.comments {
		if c.StatusID == statusID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockStatusRepo) DeleteComment(_ context.Context, id int64, author string, isAdmin bool) error {
	for i, c := range m.comments {
		if c.ID == id && (c.Author == author || isAdmin) {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// testAPI — собранный API с моками для httptest.
type testAPI struct {
	router     chi.Router
	sessions   *auth.SessionManager
	bookRepo   *mockBookRepo
	userRepo   *mockUserRepo
	statusRepo *mockStatusRepo
}

// newTestAPI собирает роутер API поверх мок-репозиториев.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions, err := auth.NewSessionManager("test-key", false)
	if err != nil {
		t.Fatalf("не удалось создать SessionManager: %v", err)
	}

	bookRepo := &mockBookRepo{}
	userRepo := newMockUserRepo()
	statusRepo := newMockStatusRepo()

	uploadDir := t.TempDir()
	cache := service.NewCacheService(100, time.Minute)
	catalogSvc := service.NewCatalogService(bookRepo, cache, logger)
	downloadSvc := service.NewDownloadService(catalogSvc, nil, uploadDir, logger)
	statusSvc := service.NewStatusService(statusRepo, userRepo, logger)
	userSvc := service.NewUserService(userRepo, logger)
	ingestSvc := service.NewIngestService(bookRepo, logger)

	isAdmin := func(email string) bool { return email == "admin@example.com" }

	handler := NewAPIHandler(
		NewHealthHandler(nil),
		NewBooksHandler(catalogSvc),
		NewDownloadHandler(downloadSvc, catalogSvc),
		NewStatusesHandler(statusSvc, userSvc),
		NewAuthHandler(nil, nil, userSvc, sessions, isAdmin, "http://localhost:8080", false, logger),
		NewAdminHandler(userSvc, catalogSvc, ingestSvc, uploadDir),
		sessions,
		logger,
	)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return &testAPI{
		router:     router,
		sessions:   sessions,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		statusRepo: statusRepo,
	}
}

// authenticate выставляет сессионную cookie на запросе.
func (a *testAPI) authenticate(t *testing.T, req *http.Request, email string, isAdmin bool) {
	t.Helper()
	rec := httptest.NewRecorder()
	err := a.sessions.SetSessionCookie(rec, &auth.SessionData{
		Email:     email,
		Name:      "Test User",
		IsAdmin:   isAdmin,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("не удалось создать сессию: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
}

// do выполняет запрос через роутер и возвращает recorder.
func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	return resp
}
