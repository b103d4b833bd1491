package repository

import (
	"context"
	"errors"
	"testing"

	"cs-ladder/internal/domain"

	"github.com/rs/zerolog"
)

func seedPlayers(t *testing.T, repo *PlayerRepository, players map[string]int) {
	t.Helper()
	for name, elo := range players {
		if err := repo.Create(context.Background(), &domain.Player{Name: name, Elo: elo}); err != nil {
			t.Fatalf("failed to seed %q: %v", name, err)
		}
	}
}

func TestPlayerGetCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlayerRepository(db, zerolog.Nop())
	seedPlayers(t, repo, map[string]int{"Sarge": 1100})

	p, err := repo.Get(context.Background(), "sarge")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Name != "Sarge" || p.Elo != 1100 {
		t.Errorf("got %+v", p)
	}

	_, err = repo.Get(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerListOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlayerRepository(db, zerolog.Nop())
	seedPlayers(t, repo, map[string]int{"zed": 1200, "abe": 1200, "max": 1300})

	players, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"max", "abe", "zed"} // elo desc, name asc on tie
	if len(players) != len(want) {
		t.Fatalf("got %d players", len(players))
	}
	for i, name := range want {
		if players[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, players[i].Name, name)
		}
	}
}

func TestSetOnlineReplacesSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlayerRepository(db, zerolog.Nop())
	seedPlayers(t, repo, map[string]int{"a": 1000, "b": 1000, "c": 1000})
	ctx := context.Background()

	if err := repo.SetOnline(ctx, []string{"a", "b"}); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if err := repo.SetOnline(ctx, []string{"C"}); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}

	players, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, p := range players {
		want := p.Name == "c"
		if p.IsOnline != want {
			t.Errorf("%s online = %v, want %v", p.Name, p.IsOnline, want)
		}
	}
}

func TestResetAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlayerRepository(db, zerolog.Nop())
	seedPlayers(t, repo, map[string]int{"a": 1400})
	ctx := context.Background()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	p, err := repo.GetTx(ctx, tx, "a")
	if err != nil {
		t.Fatalf("GetTx: %v", err)
	}
	p.Wins, p.Kills, p.StreakType, p.StreakCount = 3, 60, "win", 3
	if err := repo.UpdateTx(ctx, tx, p); err != nil {
		t.Fatalf("UpdateTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := repo.ResetAll(ctx, 1000); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}

	got, err := repo.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Elo != 1000 || got.Wins != 0 || got.Kills != 0 ||
		got.StreakType != "none" || got.StreakCount != 0 {
		t.Errorf("player not reset: %+v", got)
	}
}
