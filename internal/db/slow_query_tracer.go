package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectpulse/pkg/metrics"
)

type ctxKey int

const (
	ctxKeyQueryStart ctxKey = iota
	ctxKeyQuerySQL
)

// SlowQueryTracer 记录超过阈值的查询。报表端点每次请求都
// 现算任务和支出聚合，慢查询直接放大接口延迟，需要尽早暴露。
type SlowQueryTracer struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

func NewSlowQueryTracer(logger *zap.Logger, slowThreshold time.Duration) *SlowQueryTracer {
	if slowThreshold <= 0 {
		slowThreshold = 100 * time.Millisecond
	}
	return &SlowQueryTracer{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

func (t *SlowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx = context.WithValue(ctx, ctxKeyQueryStart, time.Now())
	ctx = context.WithValue(ctx, ctxKeyQuerySQL, data.SQL)
	return ctx
}

func (t *SlowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(ctxKeyQueryStart).(time.Time)
	if !ok {
		return
	}

	took := time.Since(start)
	if took <= t.slowThreshold {
		return
	}

	sql, _ := ctx.Value(ctxKeyQuerySQL).(string)
	if sql == "" {
		sql = "unknown"
	}
	if len(sql) > 200 {
		sql = sql[:200] + "..."
	}

	t.logger.Warn("slow-query",
		zap.String("sql", sql),
		zap.Duration("took", took),
		zap.String("command_tag", data.CommandTag.String()),
	)
	metrics.SlowQueryCount.Inc()
}
