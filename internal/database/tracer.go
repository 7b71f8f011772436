package database

import (
	"context"
	"strings"
	"time"

	"github.com/deppfellow/crashmap/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// queryTracer records statement latency and logs statements slower than
// threshold. A zero threshold disables slow query logging but keeps the
// latency histogram.
type queryTracer struct {
	log       *zerolog.Logger
	threshold time.Duration
	now       func() time.Time
}

func newQueryTracer(log *zerolog.Logger, threshold time.Duration) *queryTracer {
	return &queryTracer{log: log, threshold: threshold, now: time.Now}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: t.now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}

	elapsed := t.now().Sub(start.at)
	metrics.QueryDuration.Observe(elapsed.Seconds())

	if t.threshold <= 0 || elapsed < t.threshold {
		return
	}

	metrics.SlowQueries.Inc()
	t.log.Warn().
		Err(data.Err).
		Dur("duration", elapsed).
		Dur("threshold", t.threshold).
		Str("sql", compactSQL(start.sql)).
		Msg("slow query")
}

// compactSQL collapses whitespace so multi-line statements fit on one log line.
func compactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
