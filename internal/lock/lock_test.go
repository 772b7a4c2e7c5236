package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLocalLockerExclusive(t *testing.T) {
	l := NewLocalLocker(time.Second)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Obtain(ctx, GroupKey(1), time.Second)
			if err != nil {
				t.Errorf("Obtain: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("%d holders at once, want 1", maxSeen)
	}
}

func TestLocalLockerTimeout(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Obtain(ctx, GroupKey(1), time.Second)
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	defer release()

	if _, err := l.Obtain(ctx, GroupKey(1), time.Second); !errors.Is(err, ErrNotObtained) {
		t.Errorf("expected ErrNotObtained, got %v", err)
	}

	other, err := l.Obtain(ctx, GroupKey(2), time.Second)
	if err != nil {
		t.Fatalf("a different key should not block: %v", err)
	}
	other()
}

func TestLocalLockerReleaseTwice(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Obtain(ctx, "k", 0)
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	release()
	release()

	again, err := l.Obtain(ctx, "k", 0)
	if err != nil {
		t.Fatalf("Obtain after release: %v", err)
	}
	again()
}

func TestLocalLockerContextCanceled(t *testing.T) {
	l := NewLocalLocker(time.Second)
	release, _ := l.Obtain(context.Background(), "k", 0)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Obtain(ctx, "k", 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
