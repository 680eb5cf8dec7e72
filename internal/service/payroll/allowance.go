package payroll

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/albamate/albamate-backend/internal/domain/payroll"
)

// AllowancePolicy decides the weekly holiday allowance of a payroll period.
type AllowancePolicy interface {
	WeeklyAllowance(details []payroll.PayrollDetail) int64
}

// ThresholdAllowance pays, for every ISO week of the period in which at least
// MinWeeklyHours were worked, min(hours, FullTimeHours)/FullTimeHours × AllowanceHours
// hours at the hours-weighted average wage of that week.
type ThresholdAllowance struct {
	MinWeeklyHours decimal.Decimal
	AllowanceHours decimal.Decimal
	FullTimeHours  decimal.Decimal
}

func NewThresholdAllowance(minWeeklyHours, allowanceHours float64) ThresholdAllowance {
	return ThresholdAllowance{
		MinWeeklyHours: decimal.NewFromFloat(minWeeklyHours),
		AllowanceHours: decimal.NewFromFloat(allowanceHours),
		FullTimeHours:  decimal.NewFromInt(40),
	}
}

type isoWeek struct {
	year, week int
}

type weekTotals struct {
	hours    decimal.Decimal
	weighted decimal.Decimal // Σ hours × wage
}

func (a ThresholdAllowance) WeeklyAllowance(details []payroll.PayrollDetail) int64 {
	weeks := map[isoWeek]*weekTotals{}
	for _, d := range details {
		y, w := d.WorkDate.ISOWeek()
		key := isoWeek{y, w}
		totals, ok := weeks[key]
		if !ok {
			totals = &weekTotals{hours: decimal.Zero, weighted: decimal.Zero}
			weeks[key] = totals
		}
		totals.hours = totals.hours.Add(d.TotalHours)
		totals.weighted = totals.weighted.Add(d.TotalHours.Mul(decimal.NewFromInt(d.BaseHourlyWage)))
	}

	keys := make([]isoWeek, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	var total int64
	for _, k := range keys {
		totals := weeks[k]
		if totals.hours.LessThan(a.MinWeeklyHours) || !totals.hours.IsPositive() {
			continue
		}

		// counted/full-time × allowance hours × (weighted / hours)
		counted := decimal.Min(totals.hours, a.FullTimeHours)
		total += counted.
			Mul(a.AllowanceHours).
			Mul(totals.weighted).
			Div(totals.hours.Mul(a.FullTimeHours)).
			Round(0).
			IntPart()
	}
	return total
}
