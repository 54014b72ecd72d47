package cache

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v8"
)

func TestVendorCache_Get_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)
	ctx := context.Background()

	key := Key("fmp", "2026-01-02", "market-breadth")
	mock.ExpectGet(key).SetVal(`{"advancingVolume":3000000000}`)

	payload, found, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected cache hit")
	}
	if string(payload) != `{"advancingVolume":3000000000}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVendorCache_Get_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)
	ctx := context.Background()

	key := Key("polygon", "2026-01-02", "ma-crossover")
	mock.ExpectGet(key).RedisNil()

	_, found, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error on miss: %v", err)
	}
	if found {
		t.Fatalf("expected cache miss")
	}
}

func TestVendorCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)
	ctx := context.Background()

	key := Key("unusualwhales", "2026-01-02", "relative-volume")
	mock.ExpectSet(key, []byte("payload"), dayTTL).SetVal("OK")

	if err := c.Set(ctx, key, []byte("payload"), dayTTL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
