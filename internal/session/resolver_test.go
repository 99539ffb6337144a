package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/TLChilton/Milestone-2/internal/users"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:session_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}, &AuthToken{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func newTestServices(t *testing.T, db *gorm.DB) (*Service, *users.Service) {
	t.Helper()
	userService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create user service: %v", err)
	}
	sessionService, err := NewService(ServiceConfig{Database: db, Users: userService})
	if err != nil {
		t.Fatalf("failed to create session service: %v", err)
	}
	return sessionService, userService
}

func registerTestUser(t *testing.T, userService *users.Service) users.User {
	t.Helper()
	user, err := userService.Register(context.Background(), users.RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "a@x.com",
		Password:  "p",
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	return user
}

func TestResolveMissingTokenIsAnonymous(t *testing.T) {
	sessionService, _ := newTestServices(t, openTestDB(t))

	identity, err := sessionService.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if identity.LoggedIn {
		t.Fatal("expected anonymous identity for missing token")
	}
}

func TestResolveUnknownTokenIsAnonymous(t *testing.T) {
	sessionService, _ := newTestServices(t, openTestDB(t))

	identity, err := sessionService.Resolve(context.Background(), "forged-or-stale")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if identity.LoggedIn {
		t.Fatal("expected anonymous identity for unknown token")
	}
}

func TestMintedTokenResolvesToIdentityProjection(t *testing.T) {
	sessionService, userService := newTestServices(t, openTestDB(t))
	user := registerTestUser(t, userService)

	token, err := sessionService.Mint(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	identity, err := sessionService.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !identity.LoggedIn {
		t.Fatal("expected a logged-in identity")
	}
	if identity.UserID != user.ID || identity.Email != "a@x.com" || identity.FirstName != "Ada" {
		t.Fatalf("unexpected identity projection: %+v", identity)
	}
}

func TestMultipleLiveTokensPerUser(t *testing.T) {
	sessionService, userService := newTestServices(t, openTestDB(t))
	user := registerTestUser(t, userService)

	first, err := sessionService.Mint(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("first mint failed: %v", err)
	}
	second, err := sessionService.Mint(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second mint failed: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens")
	}

	for _, token := range []string{first, second} {
		identity, err := sessionService.Resolve(context.Background(), token)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if !identity.LoggedIn {
			t.Fatalf("expected token %q to stay live", token)
		}
	}
}

func TestRevokeInvalidatesToken(t *testing.T) {
	sessionService, userService := newTestServices(t, openTestDB(t))
	user := registerTestUser(t, userService)

	token, err := sessionService.Mint(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := sessionService.Revoke(context.Background(), token); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	identity, err := sessionService.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if identity.LoggedIn {
		t.Fatal("expected revoked token to resolve anonymous")
	}

	// Revoking again is a no-op, not an error.
	if err := sessionService.Revoke(context.Background(), token); err != nil {
		t.Fatalf("second revoke failed: %v", err)
	}
}
