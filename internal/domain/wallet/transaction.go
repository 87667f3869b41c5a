package wallet

import (
	"github.com/flexprice/invoicer/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is a settled movement on a wallet
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	WalletID    string          `db:"wallet_id" json:"wallet_id"`
	InvoiceID   string          `db:"invoice_id" json:"invoice_id"`
	AmountCents int64           `db:"amount_cents" json:"amount_cents"`
	Credits     decimal.Decimal `db:"credits" json:"credits"`
	types.BaseModel
}
