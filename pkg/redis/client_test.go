package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*MetricsClient, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := New(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewMetricsClient(client), mr
}

func TestMetricsClient_RoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	value, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
	assert.True(t, mr.TTL("k") > 0)

	require.NoError(t, client.Delete(ctx, "k"))
	_, err = client.Get(ctx, "k")
	assert.True(t, errors.Is(err, goredis.Nil))

	assert.NoError(t, client.HealthCheck(ctx))
}

func TestClient_ScanKeys(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	for _, key := range []string{"session:1", "session:2", "session:3", "other:1"} {
		require.NoError(t, mr.Set(key, "x"))
	}

	keys, err := client.ScanKeys(ctx, "session:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session:1", "session:2", "session:3"}, keys)
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := New(ctx, Config{Addr: "127.0.0.1:1", MaxRetries: -1})
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestMetricsClient_CountsMissSeparately(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	misses := testutil.ToFloat64(requestsTotal.WithLabelValues("get", "miss"))
	failures := testutil.ToFloat64(requestsTotal.WithLabelValues("get", "error"))

	_, err := client.Get(ctx, "absent")
	require.ErrorIs(t, err, goredis.Nil)

	assert.Equal(t, misses+1, testutil.ToFloat64(requestsTotal.WithLabelValues("get", "miss")))
	assert.Equal(t, failures, testutil.ToFloat64(requestsTotal.WithLabelValues("get", "error")))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", result(nil))
	assert.Equal(t, "miss", result(goredis.Nil))
	assert.Equal(t, "error", result(errors.New("boom")))
}
