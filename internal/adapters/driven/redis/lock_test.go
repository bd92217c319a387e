package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client
}

func TestLock_OwnerID_Unique(t *testing.T) {
	client := setupTestRedis(t)

	lock1 := NewLock(client)
	lock2 := NewLock(client)

	if lock1.OwnerID() == lock2.OwnerID() {
		t.Errorf("expected distinct owner IDs, got %s twice", lock1.OwnerID())
	}
}

func TestLock_Acquire(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "sync:src-1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected to acquire lock")
	}
}

func TestLock_Acquire_HeldByOther(t *testing.T) {
	client := setupTestRedis(t)
	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	if acquired, _ := lock1.Acquire(ctx, "sync:src-1", 10*time.Second); !acquired {
		t.Fatal("expected first instance to acquire")
	}

	acquired, err := lock2.Acquire(ctx, "sync:src-1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected second instance to be refused")
	}
}

func TestLock_Release_AllowsReacquire(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	if acquired, _ := lock.Acquire(ctx, "sync:src-1", 10*time.Second); !acquired {
		t.Fatal("expected to acquire lock")
	}
	if err := lock.Release(ctx, "sync:src-1"); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}

	acquired, err := lock.Acquire(ctx, "sync:src-1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected to reacquire after release")
	}
}

func TestLock_Release_NotHeld(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewLock(client)

	if err := lock.Release(context.Background(), "sync:src-1"); err != nil {
		t.Errorf("unexpected error releasing unheld lock: %v", err)
	}
}

func TestLock_Release_ByDifferentOwner(t *testing.T) {
	client := setupTestRedis(t)
	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	if acquired, _ := lock1.Acquire(ctx, "sync:src-1", 10*time.Second); !acquired {
		t.Fatal("expected to acquire lock")
	}

	// A non-owner release is a no-op, the lock stays held.
	if err := lock2.Release(ctx, "sync:src-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acquired, err := lock2.Acquire(ctx, "sync:src-1", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected lock to still be held by the first instance")
	}
}

func TestLock_Extend(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	if acquired, _ := lock.Acquire(ctx, "sync:src-1", 1*time.Second); !acquired {
		t.Fatal("expected to acquire lock")
	}
	if err := lock.Extend(ctx, "sync:src-1", 10*time.Second); err != nil {
		t.Fatalf("unexpected extend error: %v", err)
	}
}

func TestLock_Extend_NotHeld(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewLock(client)

	if err := lock.Extend(context.Background(), "sync:src-1", 10*time.Second); err == nil {
		t.Error("expected error extending unheld lock")
	}
}

func TestLock_Extend_ByDifferentOwner(t *testing.T) {
	client := setupTestRedis(t)
	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	if acquired, _ := lock1.Acquire(ctx, "sync:src-1", 10*time.Second); !acquired {
		t.Fatal("expected to acquire lock")
	}
	if err := lock2.Extend(ctx, "sync:src-1", 20*time.Second); err == nil {
		t.Error("expected error when another instance extends")
	}
}

func TestLock_IndependentNames(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewLock(client)
	ctx := context.Background()

	if acquired, _ := lock.Acquire(ctx, "sync:src-1", 10*time.Second); !acquired {
		t.Fatal("expected to acquire first lock")
	}
	acquired, err := lock.Acquire(ctx, "sync:src-2", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected to acquire second lock")
	}
}
