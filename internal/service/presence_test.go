package service

import (
	"context"
	"testing"

	"cs-ladder/internal/api"
	"cs-ladder/internal/config"

	"github.com/rs/zerolog"
)

func TestPresenceFallbackSample(t *testing.T) {
	env := newTestEnv(t)
	names := tenNames()
	env.seed(t, names, flatElos(10, 1000))

	client := api.NewPresenceClient(&config.Config{})
	svc := NewPresenceService(env.playerRepo, client, zerolog.Nop())

	online, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	for _, n := range online {
		if !known[n] {
			t.Errorf("sampled unknown player %q", n)
		}
	}

	players, err := env.playerRepo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	flagged := 0
	for _, p := range players {
		if p.IsOnline {
			flagged++
		}
	}
	if flagged != len(online) {
		t.Errorf("%d players flagged online, refresh returned %d", flagged, len(online))
	}
}

func TestPresenceRefreshEmptyRoster(t *testing.T) {
	env := newTestEnv(t)
	client := api.NewPresenceClient(&config.Config{})
	svc := NewPresenceService(env.playerRepo, client, zerolog.Nop())

	online, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(online) != 0 {
		t.Errorf("empty roster produced %d online players", len(online))
	}
}
