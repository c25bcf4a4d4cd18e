package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/spendlens/spendlens/internal/linktoken"
)

type mockSource struct {
	calls int
	token Token
	err   error
}

func (m *mockSource) CreateLinkToken(ctx context.Context, userID string) (Token, error) {
	m.calls++
	return m.token, m.err
}

func TestCachedSourceMintsOnMiss(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cache := linktoken.New().WithClock(func() time.Time { return now })
	source := &mockSource{token: Token{Value: "tok-1", ExpiresAt: now.Add(30 * time.Minute)}}

	cached := NewCachedSource(source, cache)

	got, err := cached.CreateLinkToken(context.Background(), "u1")
	if err != nil || got.Value != "tok-1" {
		t.Fatalf("CreateLinkToken = (%+v, %v)", got, err)
	}
	if source.calls != 1 {
		t.Errorf("source minted %d times, want 1", source.calls)
	}

	// Second call hits the cache.
	got, err = cached.CreateLinkToken(context.Background(), "u1")
	if err != nil || got.Value != "tok-1" {
		t.Fatalf("CreateLinkToken = (%+v, %v)", got, err)
	}
	if source.calls != 1 {
		t.Errorf("source minted %d times after cached call, want 1", source.calls)
	}
}

func TestCachedSourceRemintsAfterReset(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cache := linktoken.New().WithClock(func() time.Time { return now })
	source := &mockSource{token: Token{Value: "tok-1", ExpiresAt: now.Add(30 * time.Minute)}}

	cached := NewCachedSource(source, cache)
	if _, err := cached.CreateLinkToken(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}

	cache.Reset()
	if _, err := cached.CreateLinkToken(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if source.calls != 2 {
		t.Errorf("source minted %d times, want 2", source.calls)
	}
}
