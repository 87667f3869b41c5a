package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Scope namespaces the keys of one kind of record
type Scope string

const (
	ScopeSubscriptionFee Scope = "subscription_fee"
	ScopeChargeFee       Scope = "charge_fee"
	ScopeAddOnFee        Scope = "add_on_fee"
)

// Generator derives fee idempotency keys. Equal inputs always give the same
// key, so a fee computed twice for the same period collides in the store.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// SubscriptionFeeKey identifies the plan fee of a subscription for one period
func (g *Generator) SubscriptionFeeKey(subscriptionID string, from, to time.Time) string {
	return g.GenerateKey(ScopeSubscriptionFee, map[string]any{
		"subscription_id": subscriptionID,
		"from":            from.UTC().Format(time.RFC3339Nano),
		"to":              to.UTC().Format(time.RFC3339Nano),
	})
}

// ChargeFeeKey identifies the usage fee of one charge for one charges period
func (g *Generator) ChargeFeeKey(subscriptionID, chargeID string, from, to time.Time) string {
	return g.GenerateKey(ScopeChargeFee, map[string]any{
		"subscription_id": subscriptionID,
		"charge_id":       chargeID,
		"from":            from.UTC().Format(time.RFC3339Nano),
		"to":              to.UTC().Format(time.RFC3339Nano),
	})
}

// AddOnFeeKey identifies the fee of an applied add-on, which is billed once
func (g *Generator) AddOnFeeKey(appliedAddOnID string) string {
	return g.GenerateKey(ScopeAddOnFee, map[string]any{
		"applied_add_on_id": appliedAddOnID,
	})
}

// GenerateKey hashes scope and params into "<scope>-<16 hex chars>". Param
// order does not matter.
func (g *Generator) GenerateKey(scope Scope, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, name := range names {
		fmt.Fprintf(&b, ":%s=%v", name, params[name])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s-%s", scope, hex.EncodeToString(sum[:8]))
}
