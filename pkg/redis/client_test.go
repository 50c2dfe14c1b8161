package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crmbase-app/crmbase-backend/pkg/config"
)

type fakeStore struct {
	values  map[string]string
	counts  map[string]int64
	expired map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:  map[string]string{},
		counts:  map[string]int64{},
		expired: map[string]time.Duration{},
	}
}

func (f *fakeStore) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expired[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func newTestClient() (*Client, *fakeStore) {
	store := newFakeStore()
	return &Client{store: store}, store
}

func TestSetGetDel(t *testing.T) {
	client, _ := newTestClient()
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get: %v %q", err, got)
	}
	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "k"); err != redis.Nil {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
}

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	client, store := newTestClient()
	ctx := context.Background()

	count, err := client.IncrWithTTL(ctx, "counter", time.Minute)
	if err != nil || count != 1 {
		t.Fatalf("first incr: %v %d", err, count)
	}
	if store.expired["counter"] != time.Minute {
		t.Fatal("expected TTL on first increment")
	}

	store.expired = map[string]time.Duration{}
	count, err = client.IncrWithTTL(ctx, "counter", time.Minute)
	if err != nil || count != 2 {
		t.Fatalf("second incr: %v %d", err, count)
	}
	if len(store.expired) != 0 {
		t.Fatal("TTL must only be set on the first increment")
	}
}

func TestKeyNamespacing(t *testing.T) {
	client, _ := newTestClient()
	if got := client.AccessSessionKey("abc"); got != "crm:session:access:abc" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.RateLimitKey("login"); got != "crm:rate_limit:login" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when url and address are missing")
	}
}

func TestOptionsFromConfigAddress(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 5})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.PoolSize != 5 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
