package models

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/rahul4469/runtime-calculator/migrations"
)

// exerciseStore runs the behavior every PageStore must share.
func exerciseStore(t *testing.T, store PageStore) {
	t.Helper()
	ctx := context.Background()
	key := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = store.Delete(context.Background(), key) })

	state, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.Phase != PhaseUntouched {
		t.Fatalf("phase = %s, want untouched", state.Phase)
	}

	id := uuid.New()
	if _, err := store.Update(ctx, key, func(s *PageState) error { return s.Submit("some code here", id) }); err != nil {
		t.Fatalf("Update(submit): %v", err)
	}
	if _, err := store.Update(ctx, key, func(s *PageState) error { return s.Resolve(id, ResultLogarithmic) }); err != nil {
		t.Fatalf("Update(resolve): %v", err)
	}

	state, err = store.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.Phase != PhaseHasResult || state.Result == nil || *state.Result != ResultLogarithmic {
		t.Fatalf("unexpected state after resolve: %+v", state)
	}

	_, err = store.Update(ctx, key, func(s *PageState) error { return s.Resolve(id, ResultLinear) })
	if !errors.Is(err, ErrStaleSubmission) {
		t.Fatalf("stale resolve error = %v, want ErrStaleSubmission", err)
	}

	const writers = 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, key, func(s *PageState) error {
				s.Notify(ToastSuccess, "tick")
				return nil
			})
		}()
	}
	wg.Wait()

	state, _ = store.Load(ctx, key)
	// one success toast from the resolve plus the writers
	if len(state.Toasts) != writers+1 {
		t.Errorf("toasts = %d, want %d", len(state.Toasts), writers+1)
	}
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDatabase(ctx, DefaultDatabaseConfig(url))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.MigrateFS(migrations.FS, "."); err != nil {
		t.Fatal(err)
	}

	exerciseStore(t, NewPostgresStore(db.Pool, time.Hour))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, time.Hour))
}
