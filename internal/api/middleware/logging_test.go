package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// logLine — поля лог-записи, которые проверяют тесты.
type logLine struct {
	Level  string `json:"level"`
	Msg    string `json:"msg"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Status int    `json:"status"`
	Bytes  int64  `json:"bytes"`
	Query  string `json:"query"`
}

func captureLog(t *testing.T, handlerStatus int, body string, target string) logLine {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(handlerStatus)
		w.Write([]byte(body))
	}))

	req := httptest.NewRequest(http.MethodGet, target, nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line logLine
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("лог-запись не распарсилась: %v (%s)", err, buf.String())
	}
	return line
}

func TestRequestLogger(t *testing.T) {
	line := captureLog(t, http.StatusOK, "hello", "/api/books?q=tarix")

	if line.Level != "INFO" {
		t.Errorf("уровень = %q, ожидался INFO", line.Level)
	}
	if line.Status != http.StatusOK {
		t.Errorf("статус = %d, ожидался %d", line.Status, http.StatusOK)
	}
	if line.Path != "/api/books" {
		t.Errorf("путь = %q, ожидался /api/books", line.Path)
	}
	if line.Query != "q=tarix" {
		t.Errorf("query = %q, ожидался q=tarix", line.Query)
	}
	if line.Bytes != int64(len("hello")) {
		t.Errorf("объём ответа = %d, ожидалось %d", line.Bytes, len("hello"))
	}
}

func TestRequestLogger_ErrorLevels(t *testing.T) {
	if line := captureLog(t, http.StatusNotFound, "", "/api/books/missing"); line.Level != "WARN" {
		t.Errorf("уровень для 404 = %q, ожидался WARN", line.Level)
	}
	if line := captureLog(t, http.StatusInternalServerError, "", "/api/books"); line.Level != "ERROR" {
		t.Errorf("уровень для 500 = %q, ожидался ERROR", line.Level)
	}
}
