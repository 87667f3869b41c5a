package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex fee_01HZX4Q0F0N5C1V8QK2M3T7A9B
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_PLAN           = "plan"
	UUID_PREFIX_CHARGE         = "charge"
	UUID_PREFIX_CUSTOMER       = "cust"
	UUID_PREFIX_ORGANIZATION   = "org"
	UUID_PREFIX_SUBSCRIPTION   = "subs"
	UUID_PREFIX_INVOICE        = "inv"
	UUID_PREFIX_FEE            = "fee"
	UUID_PREFIX_CREDIT         = "credit"
	UUID_PREFIX_CREDIT_NOTE    = "cn"
	UUID_PREFIX_APPLIED_COUPON = "acoupon"
	UUID_PREFIX_APPLIED_ADD_ON = "aaddon"
	UUID_PREFIX_WALLET         = "wallet"
	UUID_PREFIX_WALLET_TXN     = "wtxn"
	UUID_PREFIX_EVENT          = "event"

	UUID_PREFIX_WEBHOOK_EVENT   = "webhook"
	UUID_PREFIX_PAYMENT_REQUEST = "payreq"
)
