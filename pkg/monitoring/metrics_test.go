package monitoring

import (
	"context"
	"testing"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/queue"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/store"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *queue.Engine {
	t.Helper()
	return queue.ProvideEngine(store.NewMemoryStore(), config.CFG, infra.ProvideLoggerFactory())
}

func TestPublishStatsToRedis(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	service, err := engine.CreateService(ctx, "Reception", "")
	require.NoError(t, err)
	_, err = engine.Register(ctx, service.Id, "Alice")
	require.NoError(t, err)
	_, err = engine.Register(ctx, service.Id, "Bob")
	require.NoError(t, err)

	redisClient, mock := redismock.NewClientMock()
	monitor := ProvideMonitor(redisClient, engine, config.CFG, infra.ProvideLoggerFactory())

	mock.ExpectHSet(statsRedisKey, "Reception", 2).SetVal(1)
	monitor.publishStats(ctx)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, float64(2), testutil.ToFloat64(waitingTickets.WithLabelValues("Reception")))
}

func TestPublishStatsWithoutRedis(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	service, err := engine.CreateService(ctx, "Info", "")
	require.NoError(t, err)
	_, err = engine.Register(ctx, service.Id, "Carol")
	require.NoError(t, err)

	monitor := ProvideMonitor(nil, engine, config.CFG, infra.ProvideLoggerFactory())
	monitor.publishStats(ctx)

	assert.Equal(t, float64(1), testutil.ToFloat64(waitingTickets.WithLabelValues("Info")))
}

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(queueOperations.WithLabelValues("register", "ok"))
	RecordOperation("register", "ok")
	assert.Equal(t, before+1, testutil.ToFloat64(queueOperations.WithLabelValues("register", "ok")))
}
