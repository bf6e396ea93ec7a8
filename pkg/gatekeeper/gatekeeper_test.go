package gatekeeper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() *Policy {
	return &Policy{
		MinimumMarginPercent: decimal.NewFromInt(20),
		MinimumOrderAmount:   decimal.NewFromInt(50),
	}
}

func TestEvaluateApproved(t *testing.T) {
	verdict, err := Evaluate(decimal.NewFromInt(200), decimal.NewFromInt(100), testPolicy())
	require.NoError(t, err)
	assert.True(t, verdict.Approved)
	assert.True(t, verdict.MarginPercent.Equal(decimal.NewFromInt(50)))
	assert.True(t, verdict.EstimatedProfit.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, verdict.Reason)
}

func TestEvaluateBelowMinimumOrder(t *testing.T) {
	verdict, err := Evaluate(decimal.NewFromInt(40), decimal.NewFromInt(10), testPolicy())
	require.NoError(t, err)
	assert.False(t, verdict.Approved)
	assert.Contains(t, verdict.Reason, "minimum order amount")
}

func TestEvaluateBelowMinimumMargin(t *testing.T) {
	verdict, err := Evaluate(decimal.NewFromInt(100), decimal.NewFromInt(90), testPolicy())
	require.NoError(t, err)
	assert.False(t, verdict.Approved)
	assert.Contains(t, verdict.Reason, "margin")
	// 90 / 0.8 = 112.5, rounded up to 120.
	assert.True(t, verdict.SuggestedPrice.Equal(decimal.NewFromInt(120)), "got %v", verdict.SuggestedPrice)
}

func TestEvaluateNegativeMarginNoSuggestion(t *testing.T) {
	verdict, err := Evaluate(decimal.NewFromInt(100), decimal.NewFromInt(150), testPolicy())
	require.NoError(t, err)
	assert.False(t, verdict.Approved)
	assert.True(t, verdict.SuggestedPrice.IsZero())
}

func TestEvaluateMarginExactlyAtThreshold(t *testing.T) {
	verdict, err := Evaluate(decimal.NewFromInt(100), decimal.NewFromInt(80), testPolicy())
	require.NoError(t, err)
	assert.True(t, verdict.Approved)
	assert.True(t, verdict.MarginPercent.Equal(decimal.NewFromInt(20)))
}

func TestEvaluateInvalidInput(t *testing.T) {
	_, err := Evaluate(decimal.Zero, decimal.NewFromInt(10), testPolicy())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Evaluate(decimal.NewFromInt(100), decimal.NewFromInt(-1), testPolicy())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEvaluateDeterministic(t *testing.T) {
	first, err := Evaluate(decimal.NewFromInt(123), decimal.NewFromInt(77), testPolicy())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Evaluate(decimal.NewFromInt(123), decimal.NewFromInt(77), testPolicy())
		require.NoError(t, err)
		assert.Equal(t, first.Approved, again.Approved)
		assert.True(t, first.MarginPercent.Equal(again.MarginPercent))
		assert.Equal(t, first.Reason, again.Reason)
	}
}
