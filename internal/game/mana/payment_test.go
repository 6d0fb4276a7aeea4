package mana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastCost(t *testing.T) {
	tests := []struct {
		name      string
		cost      CastCost
		shortfall int
		poolCards int
	}{
		{"pool covers rank", NewCastCost(3, 5, false), 0, 3},
		{"pool short by two", NewCastCost(5, 3, false), 2, 3},
		{"empty pool", NewCastCost(2, 0, false), 2, 0},
		{"rank zero", NewCastCost(0, 4, false), 0, 0},
		{"debug pays rank in diamonds", NewCastCost(3, 9, true), 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shortfall, tt.cost.Shortfall())
			assert.Equal(t, tt.poolCards, tt.cost.PoolCards())
		})
	}
}

func TestCalculatePayment(t *testing.T) {
	wallet := NewWallet(1)

	result := CalculatePayment(NewCastCost(4, 3, false), wallet)
	require.True(t, result.Success)
	assert.Equal(t, &PaymentPlan{PoolCards: 3, Diamonds: 1}, result.Plan)

	result = CalculatePayment(NewCastCost(5, 3, false), wallet)
	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "insufficient diamonds")
	assert.False(t, CanPay(NewCastCost(5, 3, false), wallet))
}

func TestExecutePayment(t *testing.T) {
	wallet := NewWallet(2)

	require.NoError(t, ExecutePayment(&PaymentPlan{PoolCards: 2, Diamonds: 2}, wallet))
	assert.Equal(t, 0, wallet.Available())

	assert.Error(t, ExecutePayment(&PaymentPlan{Diamonds: 1}, wallet))
	assert.NoError(t, ExecutePayment(&PaymentPlan{PoolCards: 1}, wallet))
	assert.NoError(t, ExecutePayment(nil, wallet))
}
