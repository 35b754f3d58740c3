package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/momentum/ledger"
	"github.com/cppla/momentum/utils"
)

// exerciseStore runs the Store contract against a live backend.
func exerciseStore(t *testing.T, s ledger.Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	profile := uuid.NewString()

	_, err := s.Load(ctx, profile)
	assert.ErrorIs(t, err, ledger.ErrNoDocument)

	require.NoError(t, s.Save(ctx, profile, []byte(`{"points":1}`)))
	require.NoError(t, s.Save(ctx, profile, []byte(`{"points":2}`)))

	b, err := s.Load(ctx, profile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"points":2}`, string(b))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rc := redis.NewClient(&redis.Options{Addr: addr})
	defer rc.Close()

	exerciseStore(t, NewRedisStore(rc, "momentum:test:"))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	mc, err := utils.NewMongoClient(ctx, uri)
	require.NoError(t, err)
	defer mc.Disconnect(ctx)

	exerciseStore(t, NewMongoStore(mc.Database("momentum_test")))
}
