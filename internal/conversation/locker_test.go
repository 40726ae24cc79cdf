package conversation

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func TestLocalLockerSerialisesSameKey(t *testing.T) {
	l := NewLocalLocker()

	var inside, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.WithLock(context.Background(), "+15550001111", func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak != 1 {
		t.Fatalf("expected one holder at a time, saw %d", peak)
	}
	if l.size() != 0 {
		t.Fatalf("expected no live keys, got %d", l.size())
	}
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	l := NewLocalLocker()
	release := make(chan struct{})
	held := make(chan struct{})

	go l.WithLock(context.Background(), "a", func(context.Context) error {
		close(held)
		<-release
		return nil
	})
	<-held

	done := make(chan error, 1)
	go func() {
		done <- l.WithLock(context.Background(), "b", func(context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WithLock: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("key b blocked behind key a")
	}
	close(release)
}

func TestLocalLockerRespectsContext(t *testing.T) {
	l := NewLocalLocker()
	release := make(chan struct{})
	held := make(chan struct{})

	go l.WithLock(context.Background(), "a", func(context.Context) error {
		close(held)
		<-release
		return nil
	})
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.WithLock(ctx, "a", func(context.Context) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLocalLockerReturnsFnError(t *testing.T) {
	l := NewLocalLocker()
	boom := errors.New("boom")

	if err := l.WithLock(context.Background(), "a", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

// Runs against a real server when REDIS_ADDR is set.
func TestRedisLockerTimesOut(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	l := NewRedisLocker(client, 5*time.Second, 100*time.Millisecond)
	release := make(chan struct{})
	held := make(chan struct{})

	go l.WithLock(context.Background(), "+15550008888", func(context.Context) error {
		close(held)
		<-release
		return nil
	})
	<-held
	defer close(release)

	err := l.WithLock(context.Background(), "+15550008888", func(context.Context) error { return nil })
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired, got %v", err)
	}
}
