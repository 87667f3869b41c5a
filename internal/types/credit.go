package types

// CreditNoteStatus tells whether a credit note still has balance to give
type CreditNoteStatus string

const (
	CreditNoteStatusAvailable CreditNoteStatus = "available"
	CreditNoteStatusConsumed  CreditNoteStatus = "consumed"
)

// CouponType is the discount shape of a coupon
type CouponType string

const (
	CouponTypeFixedAmount CouponType = "fixed_amount"
	CouponTypePercentage  CouponType = "percentage"
)

// CouponFrequency is how many invoices a coupon may discount
type CouponFrequency string

const (
	CouponFrequencyOnce      CouponFrequency = "once"
	CouponFrequencyRecurring CouponFrequency = "recurring"
	CouponFrequencyForever   CouponFrequency = "forever"
)

// AppliedCouponStatus is the status of a coupon attached to a customer
type AppliedCouponStatus string

const (
	AppliedCouponStatusActive     AppliedCouponStatus = "active"
	AppliedCouponStatusTerminated AppliedCouponStatus = "terminated"
)

// WalletStatus is the status of a prepaid wallet
type WalletStatus string

const (
	WalletStatusActive     WalletStatus = "active"
	WalletStatusTerminated WalletStatus = "terminated"
)

// CreditSource is where an invoice credit came from
type CreditSource string

const (
	CreditSourceCreditNote    CreditSource = "credit_note"
	CreditSourceAppliedCoupon CreditSource = "applied_coupon"
	CreditSourceWallet        CreditSource = "wallet"
)
