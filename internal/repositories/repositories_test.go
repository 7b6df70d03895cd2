package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
)

func TestUserRepository(t *testing.T) {
	db := tu.MustOpenDB(t)
	repo := NewUserRepository(db)

	t.Run("Create And Get", func(t *testing.T) {
		user := models.NewUser("spot1", "u1@example.com", "User One")
		if err := repo.Create(user); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID() == "" {
			t.Fatal("expected generated id")
		}

		got, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.SpotifyID() != "spot1" || got.Email() != "u1@example.com" {
			t.Errorf("unexpected user: %+v", got.Identity())
		}
	})

	t.Run("GetBySpotifyID", func(t *testing.T) {
		got, err := repo.GetBySpotifyID("spot1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.DisplayName() != "User One" {
			t.Errorf("unexpected user: %+v", got.Identity())
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		if _, err := repo.Get("nope"); err == nil {
			t.Error("expected error for missing user")
		}
	})

	t.Run("Update", func(t *testing.T) {
		user, err := repo.GetBySpotifyID("spot1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		user.SetDisplayName("Renamed")
		if err := repo.Update(user); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, _ := repo.Get(user.ID())
		if got.DisplayName() != "Renamed" {
			t.Errorf("expected updated name, got %s", got.DisplayName())
		}
	})

	t.Run("Duplicate Spotify ID Rejected", func(t *testing.T) {
		dupe := models.NewUser("spot1", "other@example.com", "Copycat")
		if err := repo.Create(dupe); err == nil {
			t.Error("expected unique constraint violation")
		}
	})

	t.Run("Delete Cascades Auth State", func(t *testing.T) {
		user := models.NewUser("spot2", "u2@example.com", "User Two")
		if err := repo.Create(user); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tokens := NewTokenRepository(db)
		if err := tokens.Save(&models.Token{UserID: user.ID(), AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := repo.Delete(user.ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := repo.Get(user.ID()); err == nil {
			t.Error("expected user gone")
		}
		if _, err := tokens.Get(user.ID()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected token gone, got %v", err)
		}
	})
}

func TestTokenRepository(t *testing.T) {
	db := tu.MustOpenDB(t)
	users := NewUserRepository(db)
	repo := NewTokenRepository(db)

	user := models.NewUser("spot1", "u1@example.com", "User One")
	if err := users.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	t.Run("Save Upserts", func(t *testing.T) {
		first := &models.Token{
			UserID:       user.ID(),
			AccessToken:  "at1",
			RefreshToken: "rt1",
			ExpiresAt:    time.Now().UTC().Add(time.Hour),
		}
		if err := repo.Save(first); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		second := &models.Token{
			UserID:       user.ID(),
			AccessToken:  "at2",
			RefreshToken: "rt1",
			ExpiresAt:    time.Now().UTC().Add(2 * time.Hour),
		}
		if err := repo.Save(second); err != nil {
			t.Fatalf("expected upsert, got %v", err)
		}

		got, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.AccessToken != "at2" {
			t.Errorf("expected replaced access token, got %s", got.AccessToken)
		}
		if !got.Valid() {
			t.Error("expected fresh token to be valid")
		}
	})

	t.Run("Missing Maps To Not Authenticated", func(t *testing.T) {
		if _, err := repo.Get("ghost"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Expired Token Reports Invalid", func(t *testing.T) {
		stale := &models.Token{
			UserID:      user.ID(),
			AccessToken: "at3",
			ExpiresAt:   time.Now().UTC().Add(-time.Minute),
		}
		if err := repo.Save(stale); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, _ := repo.Get(user.ID())
		if got.Valid() {
			t.Error("expected expired token to be invalid")
		}
	})
}

func TestSessionRepository(t *testing.T) {
	db := tu.MustOpenDB(t)
	users := NewUserRepository(db)
	repo := NewSessionRepository(db)

	user := models.NewUser("spot1", "u1@example.com", "User One")
	if err := users.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	t.Run("Create And Get", func(t *testing.T) {
		session, err := repo.Create(user.ID(), time.Hour)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.Get(session.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.UserID != user.ID() {
			t.Errorf("expected session for %s, got %s", user.ID(), got.UserID)
		}
	})

	t.Run("Expired Session Unauthorized", func(t *testing.T) {
		session, err := repo.Create(user.ID(), -time.Minute)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := repo.Get(session.ID); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("Unknown Session Unauthorized", func(t *testing.T) {
		if _, err := repo.Get("ghost"); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("PruneExpired", func(t *testing.T) {
		if _, err := repo.Create(user.ID(), -time.Minute); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		pruned, err := repo.PruneExpired()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pruned < 1 {
			t.Errorf("expected at least one pruned session, got %d", pruned)
		}
	})
}
