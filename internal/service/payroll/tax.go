package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/albamate/albamate-backend/internal/domain/payroll"
)

// TaxRateProvider resolves the withholding rate of a policy.
type TaxRateProvider interface {
	TaxRate(ctx context.Context, policy payroll.PayrollPolicy) (decimal.Decimal, error)
}

// ConfiguredTaxRates reads rates from configuration. InsuranceDefault is used
// when an INSURANCE_BASED store did not set its own rate.
type ConfiguredTaxRates struct {
	Flat             decimal.Decimal
	InsuranceDefault *decimal.Decimal
}

func NewConfiguredTaxRates(flat float64, insuranceDefault *float64) ConfiguredTaxRates {
	rates := ConfiguredTaxRates{Flat: decimal.NewFromFloat(flat)}
	if insuranceDefault != nil {
		d := decimal.NewFromFloat(*insuranceDefault)
		rates.InsuranceDefault = &d
	}
	return rates
}

func (r ConfiguredTaxRates) TaxRate(ctx context.Context, policy payroll.PayrollPolicy) (decimal.Decimal, error) {
	switch policy.TaxPolicyType {
	case payroll.TaxPolicyFlatWithholding:
		return r.Flat, nil
	case payroll.TaxPolicyInsuranceBased:
		if policy.InsuranceTaxRate != nil {
			return *policy.InsuranceTaxRate, nil
		}
		if r.InsuranceDefault != nil {
			return *r.InsuranceDefault, nil
		}
		return decimal.Zero, payroll.ErrInsuranceRateUnavailable
	default:
		return decimal.Zero, fmt.Errorf("unknown tax policy type %q: %w", policy.TaxPolicyType, payroll.ErrInvalidPolicy)
	}
}

// taxAmount is round_half_up(gross × rate).
func taxAmount(gross int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(gross).Mul(rate).Round(0).IntPart()
}
