package monitoring

import (
	"context"
	"time"

	"github.com/Sonoda-Arito/reception-queue-server/pkg/config"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/infra"
	"github.com/Sonoda-Arito/reception-queue-server/pkg/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const statsRedisKey = "reception:stats"

var (
	waitingTickets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reception_waiting_tickets",
			Help: "Current number of waiting tickets per service",
		},
		[]string{"service"},
	)

	queueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reception_queue_operations_total",
			Help: "Total queue operations by outcome",
		},
		[]string{"operation", "status"},
	)
)

// RecordOperation counts a queue operation outcome. Called from the
// http handlers.
func RecordOperation(operation, status string) {
	queueOperations.WithLabelValues(operation, status).Inc()
}

// Monitor periodically pulls queue stats into prometheus gauges and,
// when redis is configured, publishes the waiting counts into a redis
// hash for external display boards. Fire-and-forget, a publish
// failure never touches the queue.
type Monitor struct {
	redisClient *redis.Client
	engine      *queue.Engine
	interval    time.Duration
	logger      *zap.SugaredLogger
}

func ProvideMonitor(redisClient *redis.Client, engine *queue.Engine, cfg *config.Config, loggerFactory *infra.LoggerFactory) *Monitor {
	return &Monitor{
		redisClient: redisClient,
		engine:      engine,
		interval:    time.Duration(*cfg.PublishStatsIntervalSeconds) * time.Second,
		logger:      loggerFactory.Create("Monitor").Sugar(),
	}
}

func (m *Monitor) Run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for ; true; <-ticker.C {
		m.publishStats(context.Background())
	}
}

func (m *Monitor) publishStats(ctx context.Context) {
	summaries, err := m.engine.Stats(ctx)
	if err != nil {
		m.logger.Errorf("cannot load stats %v", err)
		return
	}

	fields := make([]interface{}, 0, len(summaries)*2)
	for _, summary := range summaries {
		waitingTickets.WithLabelValues(summary.ServiceName).Set(float64(summary.Waiting))
		fields = append(fields, summary.ServiceName, summary.Waiting)
	}

	if m.redisClient == nil || len(fields) == 0 {
		return
	}

	if err := m.redisClient.HSet(ctx, statsRedisKey, fields...).Err(); err != nil {
		m.logger.Errorf("cannot publish stats to redis %v", err)
	}
}
