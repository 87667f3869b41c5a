package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/flexprice/invoicer/internal/logger"
)

// SlowQueryThreshold is the duration above which a statement is logged at
// warn level
const SlowQueryThreshold = 500 * time.Millisecond

// TracedQuerier logs every statement it runs with its duration and the
// transaction it belongs to
type TracedQuerier struct {
	Querier
	logger *logger.Logger
	txID   string
}

func NewTracedQuerier(q Querier, logger *logger.Logger, txID string) *TracedQuerier {
	return &TracedQuerier{
		Querier: q,
		logger:  logger,
		txID:    txID,
	}
}

// trace returns the function that logs the outcome of query once it is done
func (tq *TracedQuerier) trace(query string, args any) func(err error) {
	start := time.Now()
	return func(err error) {
		elapsed := time.Since(start)
		fields := []any{
			"duration_ms", elapsed.Milliseconds(),
			"query", compact(query),
			"args", args,
		}
		if tq.txID != "" {
			fields = append(fields, "tx_id", tq.txID)
		}
		if isRowLock(query) {
			fields = append(fields, "row_lock", true)
		}

		switch {
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			tq.logger.Errorw("database query failed", append(fields, "error", err)...)
		case elapsed > SlowQueryThreshold:
			tq.logger.Warnw("slow database query", fields...)
		default:
			tq.logger.Debugw("database query completed", fields...)
		}
	}
}

func (tq *TracedQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	done := tq.trace(query, args)
	result, err := tq.Querier.ExecContext(ctx, query, args...)
	done(err)
	return result, err
}

func (tq *TracedQuerier) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	done := tq.trace(query, arg)
	result, err := tq.Querier.NamedExecContext(ctx, query, arg)
	done(err)
	return result, err
}

func (tq *TracedQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	done := tq.trace(query, args)
	rows, err := tq.Querier.QueryContext(ctx, query, args...)
	done(err)
	return rows, err
}

func (tq *TracedQuerier) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	done := tq.trace(query, args)
	err := tq.Querier.GetContext(ctx, dest, query, args...)
	done(err)
	return err
}

func (tq *TracedQuerier) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	done := tq.trace(query, args)
	err := tq.Querier.SelectContext(ctx, dest, query, args...)
	done(err)
	return err
}

// compact collapses the whitespace of multi-line statements for logging
func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// isRowLock reports whether query locks the rows it reads, as credit source
// reads do during assembly
func isRowLock(query string) bool {
	return strings.Contains(strings.ToUpper(query), "FOR UPDATE")
}
