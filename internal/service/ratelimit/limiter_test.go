package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesTokens(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("src", 3, 0) {
			t.Fatalf("expected token %d available", i)
		}
	}
	if l.Allow("src", 3, 0) {
		t.Fatalf("expected bucket drained")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("expected token for a")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("draining a must not affect b")
	}
}

func TestWaitCancel(t *testing.T) {
	l := New()
	l.Allow("src", 1, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "src", 1, 0); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestRefill(t *testing.T) {
	l := New()
	l.Allow("src", 1, 50)
	if l.Allow("src", 1, 50) {
		t.Fatalf("expected empty bucket")
	}
	time.Sleep(40 * time.Millisecond)
	if !l.Allow("src", 1, 50) {
		t.Fatalf("expected refilled token")
	}
}
