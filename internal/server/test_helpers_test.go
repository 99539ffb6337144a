package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TLChilton/Milestone-2/internal/catalog"
	"github.com/TLChilton/Milestone-2/internal/database"
	"github.com/TLChilton/Milestone-2/internal/downloads"
	"github.com/TLChilton/Milestone-2/internal/session"
	"github.com/TLChilton/Milestone-2/internal/users"
	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testCookieName = "authToken"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.Migrate(db, nil); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	userService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create user service: %v", err)
	}
	sessionService, err := session.NewService(session.ServiceConfig{Database: db, Users: userService})
	if err != nil {
		t.Fatalf("failed to create session service: %v", err)
	}
	catalogService, err := catalog.NewService(catalog.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create catalog service: %v", err)
	}
	downloadLedger, err := downloads.NewLedger(downloads.LedgerConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create download ledger: %v", err)
	}

	pdfDir := t.TempDir()
	for _, name := range []string{"dracula.pdf", "frankenstein.pdf"} {
		if err := os.WriteFile(filepath.Join(pdfDir, name), []byte("%PDF-1.4 test"), 0o644); err != nil {
			t.Fatalf("failed to create test pdf %q: %v", name, err)
		}
	}

	handler, err := NewHTTPHandler(Dependencies{
		Sessions:   sessionService,
		Users:      userService,
		Catalog:    catalogService,
		Downloads:  downloadLedger,
		CookieName: testCookieName,
		PDFDir:     pdfDir,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler
}

func postForm(t *testing.T, handler http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func get(t *testing.T, handler http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if cookie != nil {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

// registerAccount drives POST /create and returns the issued session cookie.
func registerAccount(t *testing.T, handler http.Handler, email string) *http.Cookie {
	t.Helper()
	form := url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {email},
		"password":  {"p"},
	}
	recorder := postForm(t, handler, "/create", form, nil)
	if recorder.Code != http.StatusFound {
		t.Fatalf("expected redirect after registration, got %d", recorder.Code)
	}
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == testCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("expected a session cookie after registration")
	return nil
}
