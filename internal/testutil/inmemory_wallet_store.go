package testutil

import (
	"context"

	"github.com/flexprice/invoicer/internal/domain/wallet"
	ierr "github.com/flexprice/invoicer/internal/errors"
)

// InMemoryWalletStore implements wallet.Repository
type InMemoryWalletStore struct {
	wallets      *InMemoryStore[wallet.Wallet]
	transactions *InMemoryStore[wallet.Transaction]
}

func NewInMemoryWalletStore() *InMemoryWalletStore {
	return &InMemoryWalletStore{
		wallets:      NewInMemoryStore[wallet.Wallet](),
		transactions: NewInMemoryStore[wallet.Transaction](),
	}
}

func (s *InMemoryWalletStore) Create(ctx context.Context, w *wallet.Wallet) error {
	return s.wallets.Create(ctx, w.ID, *w)
}

func (s *InMemoryWalletStore) Get(ctx context.Context, id string) (*wallet.Wallet, error) {
	w, err := s.wallets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *InMemoryWalletStore) GetActiveByCustomer(ctx context.Context, customerID string) (*wallet.Wallet, error) {
	wallets := s.wallets.List(ctx,
		func(_ context.Context, w wallet.Wallet) bool {
			return w.CustomerID == customerID && w.IsActive()
		},
		func(a, b wallet.Wallet) bool { return olderThan(a.BaseModel, b.BaseModel, a.ID, b.ID) },
	)
	if len(wallets) == 0 {
		return nil, ierr.NewError("wallet not found").
			WithHintf("Customer %s has no active wallet", customerID).
			Mark(ierr.ErrNotFound)
	}
	return &wallets[0], nil
}

func (s *InMemoryWalletStore) Update(ctx context.Context, w *wallet.Wallet) error {
	return s.wallets.Update(ctx, w.ID, *w)
}

func (s *InMemoryWalletStore) CreateTransaction(ctx context.Context, txn *wallet.Transaction) error {
	return s.transactions.Create(ctx, txn.ID, *txn)
}

// Transactions lists the transactions recorded against a wallet
func (s *InMemoryWalletStore) Transactions(ctx context.Context, walletID string) []*wallet.Transaction {
	txns := s.transactions.List(ctx,
		func(_ context.Context, t wallet.Transaction) bool { return t.WalletID == walletID },
		func(a, b wallet.Transaction) bool { return olderThan(a.BaseModel, b.BaseModel, a.ID, b.ID) },
	)
	return toPointers(txns)
}

func (s *InMemoryWalletStore) Snapshot() func() {
	restoreWallets := s.wallets.Snapshot()
	restoreTransactions := s.transactions.Snapshot()
	return func() {
		restoreWallets()
		restoreTransactions()
	}
}

func (s *InMemoryWalletStore) Clear() {
	s.wallets.Clear()
	s.transactions.Clear()
}
