package mana

import (
	"fmt"
)

// PaymentPlan represents a plan for paying a cast cost.
type PaymentPlan struct {
	PoolCards int
	Diamonds  int
}

// PaymentResult represents the result of a payment attempt.
type PaymentResult struct {
	Success bool
	Plan    *PaymentPlan
	Reason  string
}

// CalculatePayment calculates a payment plan for a cast cost.
func CalculatePayment(cost CastCost, wallet *Wallet) *PaymentResult {
	if cost.Rank < 0 {
		return &PaymentResult{
			Success: false,
			Reason:  fmt.Sprintf("invalid rank %d", cost.Rank),
		}
	}

	plan := &PaymentPlan{
		PoolCards: cost.PoolCards(),
		Diamonds:  cost.Shortfall(),
	}

	available := 0
	if wallet != nil {
		available = wallet.Available()
	}
	if available < plan.Diamonds {
		return &PaymentResult{
			Success: false,
			Plan:    plan,
			Reason:  fmt.Sprintf("insufficient diamonds (need %d, have %d)", plan.Diamonds, available),
		}
	}

	return &PaymentResult{
		Success: true,
		Plan:    plan,
	}
}

// CanPay reports whether the wallet covers the cost's shortfall.
func CanPay(cost CastCost, wallet *Wallet) bool {
	return CalculatePayment(cost, wallet).Success
}

// ExecutePayment deducts the diamond part of a plan from the wallet.
// Discarding pool cards is up to the caller.
func ExecutePayment(plan *PaymentPlan, wallet *Wallet) error {
	if plan == nil {
		return nil
	}
	if plan.Diamonds == 0 {
		return nil
	}
	if wallet == nil || !wallet.Spend(plan.Diamonds) {
		return fmt.Errorf("failed to spend %d diamonds", plan.Diamonds)
	}
	return nil
}
