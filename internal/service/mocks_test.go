package service

import (
	"context"

	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/repository"
)

// --- Mock repositories ---

// mockBookRepo — мок BookRepository для unit-тестов.
type mockBookRepo struct {
	createFn             func(ctx context.Context, b *model.Book) error
	getByFileIDFn        func(ctx context.Context, fileID string) (*model.Book, error)
	listAllFn            func(ctx context.Context) ([]*model.Book, error)
	updateFn             func(ctx context.Context, b *model.Book) error
	deleteFn             func(ctx context.Context, fileID string) error
	incrementViewsFn     func(ctx context.Context, fileID string) (int64, error)
	incrementDownloadsFn func(ctx context.Context, fileID string) (int64, error)
	removeCategoryFn     func(ctx context.Context, category string) (int64, error)
}

func (m *mockBookRepo) Create(ctx context.Context, b *model.Book) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}

func (m *mockBookRepo) GetByFileID(ctx context.Context, fileID string) (*model.Book, error) {
	if m.getByFileIDFn != nil {
		return m.getByFileIDFn(ctx, fileID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockBookRepo) ListAll(ctx context.Context) ([]*model.Book, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockBookRepo) Update(ctx context.Context, b *model.Book) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, b)
	}
	return nil
}

func (m *mockBookRepo) Delete(ctx context.Context, fileID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, fileID)
	}
	return nil
}

func (m *mockBookRepo) IncrementViews(ctx context.Context, fileID string) (int64, error) {
	if m.incrementViewsFn != nil {
		return m.incrementViewsFn(ctx, fileID)
	}
	return 1, nil
}

func (m *mockBookRepo) IncrementDownloads(ctx context.Context, fileID string) (int64, error) {
	if m.incrementDownloadsFn != nil {
		return m.incrementDownloadsFn(ctx, fileID)
	}
	return 1, nil
}

func (m *mockBookRepo) RemoveCategory(ctx context.Context, category string) (int64, error) {
	if m.removeCategoryFn != nil {
		return m.removeCategoryFn(ctx, category)
	}
	return 0, nil
}

// mockUserRepo — мок UserRepository для unit-тестов.
type mockUserRepo struct {
	upsertFn      func(ctx context.Context, u *model.User) error
	getByEmailFn  func(ctx context.Context, email string) (*model.User, error)
	listAllFn     func(ctx context.Context) ([]*model.User, error)
	setVerifiedFn func(ctx context.Context, email string, verified bool) error
	setBannedFn   func(ctx context.Context, email string, banned bool) error
}

func (m *mockUserRepo) Upsert(ctx context.Context, u *model.User) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]*model.User, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) SetVerified(ctx context.Context, email string, verified bool) error {
	if m.setVerifiedFn != nil {
		return m.setVerifiedFn(ctx, email, verified)
	}
	return nil
}

func (m *mockUserRepo) SetBanned(ctx context.Context, email string, banned bool) error {
	if m.setBannedFn != nil {
		return m.setBannedFn(ctx, email, banned)
	}
	return nil
}

// mockStatusRepo — мок StatusRepository для unit-тестов.
type mockStatusRepo struct {
	createFn        func(ctx context.Context, s *model.Status) error
	getByIDFn       func(ctx context.Context, id int64) (*model.Status, error)
	listAllFn       func(ctx context.Context) ([]*model.Status, error)
	updateBodyFn    func(ctx context.Context, id int64, author, body string) error
	deleteFn        func(ctx context.Context, id int64, author string, isAdmin bool) error
	createCommentFn func(ctx context.Context, c *model.Comment) error
	listCommentsFn  func(ctx context.Context, statusID int64) ([]*model.Comment, error)
	deleteCommentFn func(ctx context.Context, id int64, author string, isAdmin bool) error
}

func (m *mockStatusRepo) Create(ctx context.Context, s *model.Status) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockStatusRepo) GetByID(ctx context.Context, id int64) (*model.Status, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockStatusRepo) ListAll(ctx context.Context) ([]*model.Status, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockStatusRepo) UpdateBody(ctx context.Context, id int64, author, body string) error {
	if m.updateBodyFn != nil {
		return m.updateBodyFn(ctx, id, author, body)
	}
	return nil
}

func (m *mockStatusRepo) Delete(ctx context.Context, id int64, author string, isAdmin bool) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, author, isAdmin)
	}
	return nil
}

func (m *mockStatusRepo) CreateComment(ctx context.Context, c *model.Comment) error {
	if m.createCommentFn != nil {
		return m.createCommentFn(ctx, c)
	}
	return nil
}

func (m *mockStatusRepo) ListComments(ctx context.Context, statusID int64) ([]*model.Comment, error) {
	if m.listCommentsFn != nil {
		return m.listCommentsFn(ctx, statusID)
	}
	return nil, nil
}

func (m *mockStatusRepo) DeleteComment(ctx context.Context, id int64, author string, isAdmin bool) error {
	if m.deleteCommentFn != nil {
		return m.deleteCommentFn(ctx, id, author, isAdmin)
	}
	return nil
}
