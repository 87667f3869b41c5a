package wallet

import (
	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
)

// Wallet holds prepaid credits of a customer. One credit is worth RateAmount
// units of Currency.
type Wallet struct {
	ID                  string             `db:"id" json:"id"`
	CustomerID          string             `db:"customer_id" json:"customer_id"`
	WalletStatus        types.WalletStatus `db:"wallet_status" json:"wallet_status"`
	Currency            string             `db:"currency" json:"currency"`
	RateAmount          decimal.Decimal    `db:"rate_amount" json:"rate_amount"`
	CreditsBalance      decimal.Decimal    `db:"credits_balance" json:"credits_balance"`
	BalanceCents        int64              `db:"balance_cents" json:"balance_cents"`
	ConsumedCredits     decimal.Decimal    `db:"consumed_credits" json:"consumed_credits"`
	ConsumedAmountCents int64              `db:"consumed_amount_cents" json:"consumed_amount_cents"`
	types.BaseModel
}

func (w *Wallet) IsActive() bool {
	return w.WalletStatus == types.WalletStatusActive
}

// Debit takes up to amountCents from the balance and returns what was taken
// along with the number of credits it represents.
func (w *Wallet) Debit(amountCents int64) (int64, decimal.Decimal) {
	if amountCents <= 0 || w.BalanceCents <= 0 {
		return 0, decimal.Zero
	}
	debited := min(amountCents, w.BalanceCents)
	credits := decimal.Zero
	if w.RateAmount.IsPositive() {
		// credits are stored in major units while balances are in cents
		credits = decimal.NewFromInt(debited).Div(decimal.NewFromInt(100)).Div(w.RateAmount)
	}

	w.BalanceCents -= debited
	w.CreditsBalance = decimal.Max(decimal.Zero, w.CreditsBalance.Sub(credits))
	w.ConsumedAmountCents += debited
	w.ConsumedCredits = w.ConsumedCredits.Add(credits)
	return debited, credits
}
