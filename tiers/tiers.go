package tiers

import "time"

// Tier is the subscription level of an account.
type Tier string

const (
	Free Tier = "free"
	Plus Tier = "plus"
	Pro  Tier = "pro"
)

// Limits groups every tier-dependent number in one place so the quota
// check, the plan store and the checkout price can never diverge.
type Limits struct {
	DailyLimit   int
	StorageCap   int // saved plans kept per user; <= 0 means unlimited
	MonthlyPrice float64
}

var table = map[Tier]Limits{
	Free: {DailyLimit: 1, StorageCap: 5, MonthlyPrice: 0},
	Plus: {DailyLimit: 5, StorageCap: 50, MonthlyPrice: 10},
	Pro:  {DailyLimit: 15, StorageCap: 0, MonthlyPrice: 15},
}

// PendingDailyLimit is the single trial generation granted while a
// payment receipt awaits admin review, regardless of tier.
const PendingDailyLimit = 1

// SubscriptionTerm is how long an approved subscription stays active.
const SubscriptionTerm = 30 * 24 * time.Hour

// For returns the limits for t; unknown values fall back to the free tier.
func For(t Tier) Limits {
	if l, ok := table[t]; ok {
		return l
	}
	return table[Free]
}

// Valid reports whether t is one of the known tiers.
func Valid(t Tier) bool {
	_, ok := table[t]
	return ok
}

// Paid reports whether t requires a payment receipt.
func Paid(t Tier) bool {
	return Valid(t) && table[t].MonthlyPrice > 0
}
