package gatekeeper

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when an order's amounts cannot be evaluated.
var ErrInvalidInput = errors.New("invalid vetting input")

var hundred = decimal.NewFromInt(100)

// Policy holds the vetting thresholds. Amounts are in the agency's billing
// currency, margins in percent.
type Policy struct {
	MinimumMarginPercent decimal.Decimal
	MinimumOrderAmount   decimal.Decimal
}

// Verdict is the outcome of evaluating one order against a policy. For
// rejected orders with a positive but insufficient margin, SuggestedPrice
// carries the budget that would clear the margin bar.
type Verdict struct {
	Approved        bool
	MarginPercent   decimal.Decimal
	EstimatedProfit decimal.Decimal
	SuggestedPrice  decimal.Decimal
	Reason          string
}

// Evaluate vets one order. margin = (budget - cost) / budget * 100. The same
// inputs always produce the same verdict.
func Evaluate(budget, estimatedCost decimal.Decimal, policy *Policy) (*Verdict, error) {
	if budget.Sign() <= 0 {
		return nil, fmt.Errorf("%w: budget %v not positive", ErrInvalidInput, budget)
	}
	if estimatedCost.Sign() < 0 {
		return nil, fmt.Errorf("%w: estimated cost %v negative", ErrInvalidInput, estimatedCost)
	}

	profit := budget.Sub(estimatedCost)
	margin := profit.Div(budget).Mul(hundred)

	verdict := &Verdict{
		MarginPercent:   margin,
		EstimatedProfit: profit,
	}

	if budget.LessThan(policy.MinimumOrderAmount) {
		verdict.Reason = fmt.Sprintf(
			"budget %v below minimum order amount %v",
			budget, policy.MinimumOrderAmount,
		)
		return verdict, nil
	}
	if margin.LessThan(policy.MinimumMarginPercent) {
		verdict.Reason = fmt.Sprintf(
			"margin %v%% below minimum %v%%",
			margin.Round(2), policy.MinimumMarginPercent,
		)
		if margin.Sign() > 0 {
			verdict.SuggestedPrice = suggestPrice(estimatedCost, policy.MinimumMarginPercent)
		}
		return verdict, nil
	}

	verdict.Approved = true
	return verdict, nil
}

// suggestPrice returns the smallest budget clearing the minimum margin,
// rounded up to the next multiple of 10.
func suggestPrice(estimatedCost, minimumMargin decimal.Decimal) decimal.Decimal {
	price := estimatedCost.Div(decimal.NewFromInt(1).Sub(minimumMargin.Div(hundred)))
	ten := decimal.NewFromInt(10)
	rounded := price.Div(ten).Ceil().Mul(ten)
	return rounded
}
