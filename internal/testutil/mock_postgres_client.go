package testutil

import (
	"context"

	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

const (
	JournalCommit   = "commit"
	JournalRollback = "rollback"
)

type mockTxKey struct{}

// MockPostgresClient runs transactions against in-memory stores. Every
// tracked store is snapshotted when the outermost transaction begins and
// restored when it fails.
type MockPostgresClient struct {
	logger  *logger.Logger
	journal *Journal
	stores  []Snapshotter
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger, journal *Journal, stores ...Snapshotter) *MockPostgresClient {
	return &MockPostgresClient{
		logger:  logger,
		journal: journal,
		stores:  stores,
	}
}

// Track adds stores to roll back on failure
func (c *MockPostgresClient) Track(stores ...Snapshotter) {
	c.stores = append(c.stores, stores...)
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) (err error) {
	// If we're already in a transaction, reuse it
	if InTx(ctx) {
		return fn(ctx)
	}

	restores := make([]func(), 0, len(c.stores))
	for _, s := range c.stores {
		restores = append(restores, s.Snapshot())
	}
	rollback := func() {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		c.journal.Record(JournalRollback)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, mockTxKey{}, true)); err != nil {
		c.logger.Debugw("rolling back mock transaction", "error", err)
		rollback()
		return err
	}

	c.journal.Record(JournalCommit)
	return nil
}

// Querier is never reached by the in-memory stores
func (c *MockPostgresClient) Querier(ctx context.Context) postgres.Querier {
	return nil
}

// InTx reports whether ctx runs inside a mock transaction
func InTx(ctx context.Context) bool {
	inTx, _ := ctx.Value(mockTxKey{}).(bool)
	return inTx
}
