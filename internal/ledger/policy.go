package ledger

import (
	"fmt"

	"github.com/quillbank/ledgerd/internal/domain"
)

// DefaultSavingsRate is the per-accrual interest rate applied to savings
// accounts when no rate is configured.
const DefaultSavingsRate = 0.03

// InterestPolicy computes the interest owed for a given balance. It is a
// closed two-case choice fixed at account creation: savings accounts accrue
// at a flat rate, checking accounts never accrue.
type InterestPolicy struct {
	rate float64
	desc string
}

func accruingPolicy(rate float64) InterestPolicy {
	return InterestPolicy{
		rate: rate,
		desc: fmt.Sprintf("accrues %.2f%% per accrual run", rate*100),
	}
}

func nonAccruingPolicy() InterestPolicy {
	return InterestPolicy{desc: "does not accrue interest"}
}

// policyFor selects the policy for a category. The rate only applies to
// accruing categories.
func policyFor(category domain.AccountCategory, rate float64) InterestPolicy {
	if category == domain.CategorySavings {
		return accruingPolicy(rate)
	}
	return nonAccruingPolicy()
}

// Calculate returns the interest amount for the given balance.
func (p InterestPolicy) Calculate(balance float64) float64 {
	return balance * p.rate
}

// Description is a human-readable summary for display only; it plays no
// part in any decision logic.
func (p InterestPolicy) Description() string {
	return p.desc
}
