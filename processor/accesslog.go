package processor

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhangdinet/httpcore"
)

// AccessLog is a ResponseInterceptor that persists one row per completed
// exchange to PostgreSQL. A logging failure never fails the response: it is
// recorded via the interceptor's logger and swallowed, the way the
// teacher's event dispatcher logs and moves on rather than letting one
// handler's error take down the rest of the pipeline.
type AccessLog struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAccessLog returns an AccessLog writing through pool. logger defaults
// to slog.Default() if nil.
func NewAccessLog(pool *pgxpool.Pool, logger *slog.Logger) *AccessLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessLog{pool: pool, logger: logger}
}

// EnsureSchema creates the access_log table if it doesn't already exist.
func (a *AccessLog) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS access_log (
	id BIGSERIAL PRIMARY KEY,
	exchange_id UUID NOT NULL,
	method TEXT NOT NULL,
	uri TEXT NOT NULL,
	status INT NOT NULL,
	request_id TEXT,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	_, err := a.pool.Exec(ctx, ddl)
	return err
}

// Process implements httpcore.ResponseInterceptor.
func (a *AccessLog) Process(ctx context.Context, resp *httpcore.Response) error {
	ex, ok := httpcore.ExchangeFromContext(ctx)
	if !ok {
		return nil
	}
	req := ex.Request()
	if req == nil {
		return nil
	}

	const insert = `INSERT INTO access_log (exchange_id, method, uri, status, request_id) VALUES ($1, $2, $3, $4, $5)`
	_, err := a.pool.Exec(ctx, insert, ex.ID(), req.Method, req.URI, resp.StatusCode, req.Header.Get(RequestIDHeader))
	if err != nil {
		a.logger.Warn("access log write failed", "error", err, "exchange", ex.ID())
	}
	return nil
}
