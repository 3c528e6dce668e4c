package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/db"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(ctx, config.StoreDriverSQLite, config.DBConfig{DSN: dsn, MaxOpenConns: 1}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(ctx, client)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Get(ctx, "v1", storage.KeyCart); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, "v1", storage.KeyCart, []byte(`{"items":[1]}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "v1", storage.KeyCart)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"items":[1]}` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := store.Delete(ctx, "v1", storage.KeyCart); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "v1", storage.KeyCart); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return first }

	if err := store.Put(ctx, "v1", storage.KeySession, []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	store.now = func() time.Time { return first.Add(time.Hour) }
	if err := store.Put(ctx, "v1", storage.KeySession, []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var entries []Entry
	if err := store.client.DB().Find(&entries).Error; err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single row after overwrite, got %d", len(entries))
	}
	if entries[0].Value != "two" || !entries[0].UpdatedAt.Equal(first.Add(time.Hour)) {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestStoreSlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Put(ctx, "v1", storage.KeySession, []byte("s")); err != nil {
		t.Fatalf("put session: %v", err)
	}
	if err := store.Put(ctx, "v1", storage.KeyCart, []byte("c")); err != nil {
		t.Fatalf("put cart: %v", err)
	}
	if err := store.Put(ctx, "v2", storage.KeyCart, []byte("other")); err != nil {
		t.Fatalf("put other visitor: %v", err)
	}

	if err := store.Delete(ctx, "v1", storage.KeyCart); err != nil {
		t.Fatalf("delete cart: %v", err)
	}
	if got, err := store.Get(ctx, "v1", storage.KeySession); err != nil || string(got) != "s" {
		t.Fatalf("session slot should survive cart removal, got %q err=%v", got, err)
	}
	if got, err := store.Get(ctx, "v2", storage.KeyCart); err != nil || string(got) != "other" {
		t.Fatalf("other visitor should be untouched, got %q err=%v", got, err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
