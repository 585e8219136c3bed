//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	perr "gitplanet/internal/platform/errors"
	"gitplanet/internal/platform/store"
	"gitplanet/internal/platform/testkit"
	"gitplanet/internal/services/auth/domain"
)

func TestSessions_Postgres(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.Config{
		AppName: "gitplanet-auth-it",
		PG:      store.PGConfig{Enabled: true, URL: testkit.Postgres(t, "sessions"), MaxConns: 2},
	})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	if err := Migrate(ctx, s.PG); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := Migrate(ctx, s.PG); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}

	r := NewPG().Bind(s.PG)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	old := domain.Session{
		Token: "6f1c2a9e-3a57-4c2b-9d3e-1b1f4f1f7a10", UserID: 583231, Login: "octocat",
		AccessToken: "gho_old", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-48 * time.Hour),
	}
	live := domain.Session{
		Token: "0b8f3c4e-7d3a-4d39-9a57-2c1f0f6f2d11", UserID: 583231, Login: "octocat",
		AccessToken: "gho_live", ExpiresAt: now.Add(24 * time.Hour), CreatedAt: now,
	}
	for _, sess := range []domain.Session{old, live} {
		if err := r.Insert(ctx, sess); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := r.Get(ctx, live.Token)
	if err != nil || got.Token != live.Token || got.AccessToken != "gho_live" || !got.ExpiresAt.Equal(live.ExpiresAt) {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := r.Get(ctx, "a0e1f6a4-52f6-4b55-8d0e-3f26f2d6d9c1"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown err = %v", err)
	}

	latest, ok, err := r.Latest(ctx, 583231, now)
	if err != nil || !ok || latest.Token != live.Token {
		t.Fatalf("Latest = %+v %v %v", latest, ok, err)
	}
	if _, ok, _ := r.Latest(ctx, 1, now); ok {
		t.Fatalf("Latest for stranger")
	}

	n, err := r.Purge(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("Purge = %d, %v", n, err)
	}
	if err := r.Delete(ctx, live.Token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := r.Latest(ctx, 583231, now); ok {
		t.Fatalf("session survived delete")
	}
}
