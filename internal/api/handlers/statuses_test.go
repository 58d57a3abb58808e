package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/gobooklib/internal/domain/model"
)

// seedUser регистрирует пользователя в мок-репозитории.
func seedUser(a *testAPI, email string) *model.User {
	u := &model.User{
		Email:     email,
		Name:      "Test User",
		CreatedAt: time.Now(),
		LastLogin: time.Now(),
	}
	a.userRepo.users[email] = u
	return u
}

func TestStatusCreate(t *testing.T) {
	a := newTestAPI(t)
	seedUser(a, "reader@example.com")

	body := `{"body":"Отличная книга!","isQuote":false}`
	req := httptest.NewRequest(http.MethodPost, "/api/statuses", strings.NewReader(body))
	a.authenticate(t, req, "reader@example.com", false)
	resp := a.do(req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("ожидался статус 201, получен %d: %s", resp.Code, resp.Body.String())
	}

	var st map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &st); err != nil {
		t.Fatalf("невалидный JSON ответа: %v", err)
	}
	if got := st["body"]; got != "Отличная книга!" {
		t.Errorf("ожидался текст статуса, получено %v", got)
	}
	if got := st["author"]; got != "reader@example.com" {
		t.Errorf("ожидался автор reader@example.com, получено %v", got)
	}
}

func TestStatusCreate_Unauthenticated(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/statuses", strings.NewReader(`{"body":"x"}`))
	resp := a.do(req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("ожидался статус 401, получен %d", resp.Code)
	}
}

func TestStatusCreate_EmptyBody(t *testing.T) {
	a := newTestAPI(t)
	seedUser(a, "reader@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/statuses", strings.NewReader(`{"body":"   "}`))
	a.authenticate(t, req, "reader@example.com", false)
	resp := a.do(req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400, получен %d", resp.Code)
	}
}

func TestStatusCreate_BannedUser(t *testing.T) {
	a := newTestAPI(t)
	u := seedUser(a, "banned@example.com")
	u.Banned = true

	req := httptest.NewRequest(http.MethodPost, "/api/statuses", strings.NewReader(`{"body":"спам"}`))
	a.authenticate(t, req, "banned@example.com", false)
	resp := a.do(req)

	if resp.Code != http.StatusForbidden {
		t.Errorf("ожидался статус 403 для заблокированного пользователя, получен %d", resp.Code)
	}
}

func TestStatusCreate_Quote(t *testing.T) {
	a := newTestAPI(t)
	seedUser(a, "reader@example.com")

	body := `{"body":"Рекомендую","isQuote":true,"bookData":{"fileId":"file-1","title":"Dune"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/statuses", strings.NewReader(body))
	a.authenticate(t, req, "reader@example.com", false)
	resp := a.do(req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("ожидался статус 201, получен %d", resp.Code)
	}
	var st struct {
		IsQuote  bool            `json:"isQuote"`
		BookData json.RawMessage `json:"bookData"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &st); err != nil {
		t.Fatalf("невалидный JSON ответа: %v", err)
	}
	if !st.IsQuote {
		t.Error("ожидался флаг isQuote")
	}
	if !strings.Contains(string(st.BookData), "Dune") {
		t.Errorf("ожидался снимок книги в bookData, получено %s", st.BookData)
	}
}

func TestStatusList_WithComments(t *testing.T) {
	a := newTestAPI(t)
	seedUser(a, "reader@example.com")

	st := &model.Status{Body: "Первый статус", Author: "reader@example.com"}
	_ = a.statusRepo.Create(context.Background(), st)
	_ = a.statusRepo.CreateComment(context.Background(), &model.Comment{
		StatusID: st.ID,
		Body:     "Согласен",
		Author:   "other@example.com",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/statuses", nil)
	resp := a.do(req)

	if resp.Code != http.StatusOK {
		t.Fatalf("ожидался статус 200, получен %d", resp.Code)
	}
	var result struct {
		Items []struct {
			Body     string `json:"body"`
			Comments []struct {
				Body string `json:"body"`
			} `json:"comments"`
		} `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("невалидный JSON ответа: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("ожидался 1 статус, получено %d", len(result.Items))
	}
	if len(result.Items[0].Comments) != 1 {
		t.Fatalf("ожидался 1 комментарий, получено %d", len(result.Items[0].Comments))
	}
	if result.Items[0].Comments[0].Body != "Согласен" {
		t.Errorf("неожиданный текст комментария: %q", result.Items[0].Comments[0].Body)
	}
}

func TestStatusUpdate_OnlyAuthor(t *testing.T) {
	a := newTestAPI(t)
	seedUser(a, "author@example.com")
	seedUser(a, "other@example.com")

	st := &model.Status{Body: "Оригинал", Author: "author@example.com"}
	_ = a.statusRepo.Create(context.Background(), st)

	// Чужой пользователь — 404
	req := httptest.NewRequest(http.MethodPut, "/api/statuses/1", strings.NewReader(`{"body":"взлом"}`))
	a.authenticate(t, req, "other@example.com", false)
	resp := a.do(req)
	if resp.Code != http.StatusNotFound {
		t.Errorf("ожидался статус 404 для чужого статуса, получен %d", resp.Code)
	}

	// Автор — 204
	req = httptest.NewRequest(http.MethodPut, "/api/statuses/1", strings.NewReader(`{"body":"Исправлено"}`))
	a.authenticate(t, req, "author@example.com", false)
	resp = a.do(req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("ожидался статус 204, получен %d", resp.Code)
	}
	if st.Body != "Исправлено" {
		t.Errorf("текст статуса не обновлён: %q", st.Body)
	}
}

func TestStatusDelete_AdminCanDeleteForeign(t *testing.T) {
	a := newTestAPI(t)
	seedUser(a, "author@example.com")
	seedUser(a, "admin@example.com")

	st := &model.Status{Body: "Нарушение", Author: "author@example.com"}
	_ = a.statusRepo.Create(context.Background(), st)

	req := httptest.NewRequest(http.MethodDelete, "/api/statuses/1", nil)
	a.authenticate(t, req, "admin@example.com", true)
	resp := a.do(req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("ожидался статус 204, получен %d", resp.Code)
	}
	if len(a.statusRepo.statuses) != 0 {
		t.Error("статус не удалён")
	}
}

func TestStatusAddComment_MissingStatus(t *testing.T) {
	a := newTestAPI(t)
	seedUser(a, "reader@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/statuses/99/comments", strings.NewReader(`{"body":"эхо"}`))
	a.authenticate(t, req, "reader@example.com", false)
	resp := a.do(req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("ожидался статус 404, получен %d", resp.Code)
	}
}

func TestStatusInvalidID(t *testing.T) {
	a := newTestAPI(t)
	seedUser(a, "reader@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/api/statuses/abc", nil)
	a.authenticate(t, req, "reader@example.com", false)
	resp := a.do(req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400 для нечислового id, получен %d", resp.Code)
	}
}
