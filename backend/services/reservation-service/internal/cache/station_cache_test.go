package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/repository/memory"
)

type fakeKV struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.failGet {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeKV) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	cmd := redis.NewStatusCmd(ctx, "set", key)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx, "del")
	cmd.SetVal(n)
	return cmd
}

type countingStore struct {
	StationStore
	mu   sync.Mutex
	gets int
	list int
}

func (c *countingStore) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.StationStore.GetByID(ctx, id)
}

func (c *countingStore) List(ctx context.Context) ([]models.Station, error) {
	c.mu.Lock()
	c.list++
	c.mu.Unlock()
	return c.StationStore.List(ctx)
}

func TestStationCacheReadThroughAndInvalidate(t *testing.T) {
	store := memory.New()
	station := store.AddStation(models.Station{Name: "Harbor", Price: 5, OwnerID: 2})
	backing := &countingStore{StationStore: store.Stations()}
	kv := newFakeKV()
	c := newStationCache(backing, kv, 0, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.GetByID(ctx, station.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != "Harbor" {
			t.Fatalf("unexpected station: %+v", got)
		}
	}
	if backing.gets != 1 {
		t.Fatalf("expected one store read, got %d", backing.gets)
	}
	if kv.ttls[stationKey(station.ID)] != defaultTTL {
		t.Fatalf("expected default ttl, got %v", kv.ttls[stationKey(station.ID)])
	}

	if _, err := c.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := c.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if backing.list != 1 {
		t.Fatalf("expected one list read, got %d", backing.list)
	}

	update := models.Station{ID: station.ID, Name: "Harbor East", Price: 6, OwnerID: 2}
	if err := c.Update(ctx, &update); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := c.GetByID(ctx, station.ID)
	if err != nil || got.Name != "Harbor East" {
		t.Fatalf("expected fresh station after update, got %+v, %v", got, err)
	}
	list, err := c.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Harbor East" {
		t.Fatalf("expected list invalidated, got %+v, %v", list, err)
	}
}

func TestStationCacheFallsThroughOnRedisError(t *testing.T) {
	store := memory.New()
	station := store.AddStation(models.Station{Name: "Harbor", OwnerID: 2})
	kv := newFakeKV()
	kv.failGet = true
	c := newStationCache(store.Stations(), kv, time.Minute, zap.NewNop())

	got, err := c.GetByID(context.Background(), station.ID)
	if err != nil || got.ID != station.ID {
		t.Fatalf("expected store fallback, got %+v, %v", got, err)
	}
}

func TestStationCacheDoesNotCacheMisses(t *testing.T) {
	store := memory.New()
	kv := newFakeKV()
	c := newStationCache(store.Stations(), kv, time.Minute, zap.NewNop())

	if _, err := c.GetByID(context.Background(), 42); err == nil {
		t.Fatalf("expected not found")
	}
	if len(kv.data) != 0 {
		t.Fatalf("misses must not be cached, got %v", kv.data)
	}
}
