package wallet

import (
	"testing"

	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWallet_Debit(t *testing.T) {
	w := &Wallet{
		WalletStatus:   types.WalletStatusActive,
		RateAmount:     decimal.NewFromInt(1),
		CreditsBalance: decimal.NewFromInt(10),
		BalanceCents:   1000,
	}

	debited, credits := w.Debit(300)
	assert.Equal(t, int64(300), debited)
	assert.True(t, credits.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, int64(700), w.BalanceCents)
	assert.True(t, w.CreditsBalance.Equal(decimal.NewFromInt(7)))

	debited, _ = w.Debit(5000)
	assert.Equal(t, int64(700), debited)
	assert.Zero(t, w.BalanceCents)
	assert.Equal(t, int64(1000), w.ConsumedAmountCents)

	debited, _ = w.Debit(100)
	assert.Zero(t, debited)
}
