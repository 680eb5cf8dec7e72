package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albamate/albamate-backend/internal/domain/attendance"
	"github.com/albamate/albamate-backend/internal/domain/payroll"
	"github.com/albamate/albamate-backend/internal/pkg/apperror"
)

var minutesPerHour = decimal.NewFromInt(60)

// WageCalculator prices a single closed attendance record against a policy.
type WageCalculator struct {
	loc *time.Location
}

// NewWageCalculator cuts night windows on calendar days of loc.
func NewWageCalculator(loc *time.Location) *WageCalculator {
	return &WageCalculator{loc: loc}
}

// Calculate splits the worked minutes into night, regular and overtime buckets
// and prices each bucket separately, rounding half up to a whole unit.
func (c *WageCalculator) Calculate(record attendance.Attendance, policy payroll.PayrollPolicy) (payroll.PayrollDetail, error) {
	if record.IsOpen() {
		return payroll.PayrollDetail{}, apperror.Detail(payroll.ErrAttendanceNotClosed,
			fmt.Sprintf("attendance %s has no check-out time", record.ID))
	}
	if !policy.RegularHoursPerDay.IsPositive() {
		return payroll.PayrollDetail{}, apperror.Detail(payroll.ErrInvalidPolicy, "regular_hours_per_day must be positive")
	}

	nightStart, err := parseClock(policy.NightWorkStartTime)
	if err != nil {
		return payroll.PayrollDetail{}, apperror.Detail(payroll.ErrInvalidPolicy, "night_work_start_time: "+err.Error())
	}
	nightEnd, err := parseClock(policy.NightWorkEndTime)
	if err != nil {
		return payroll.PayrollDetail{}, apperror.Detail(payroll.ErrInvalidPolicy, "night_work_end_time: "+err.Error())
	}

	totalMinutes := record.WorkedMinutes()
	start := record.CheckInTime
	end := start.Add(time.Duration(totalMinutes) * time.Minute)

	nightMinutes := int64(c.nightOverlap(start, end, nightStart, nightEnd) / time.Minute)
	if nightMinutes > totalMinutes {
		nightMinutes = totalMinutes
	}

	dayMinutes := totalMinutes - nightMinutes
	regularCap := policy.RegularHoursPerDay.Mul(minutesPerHour).IntPart()
	regularMinutes := min(dayMinutes, regularCap)
	overtimeMinutes := dayMinutes - regularMinutes

	wage := record.AppliedHourlyWage
	regularWage := price(regularMinutes, wage, decimal.NewFromInt(1))
	overtimeWage := price(overtimeMinutes, wage, policy.OvertimeRate)
	nightWage := price(nightMinutes, wage, policy.NightWorkRate)

	return payroll.PayrollDetail{
		AttendanceID:   record.ID,
		WorkDate:       record.WorkDate,
		StartTime:      record.CheckInTime,
		EndTime:        *record.CheckOutTime,
		TotalHours:     hours(totalMinutes),
		RegularHours:   hours(regularMinutes),
		OvertimeHours:  hours(overtimeMinutes),
		NightHours:     hours(nightMinutes),
		BaseHourlyWage: wage,
		RegularWage:    regularWage,
		OvertimeWage:   overtimeWage,
		NightWorkWage:  nightWage,
		DailyWage:      regularWage + overtimeWage + nightWage,
	}, nil
}

// nightOverlap sums the part of [start, end) that falls in the night window of
// every calendar day it touches. A window whose end is not after its start
// wraps: [start, 24:00) plus [00:00, end) of the same day.
func (c *WageCalculator) nightOverlap(start, end time.Time, nightStart, nightEnd time.Duration) time.Duration {
	if !end.After(start) || nightStart == nightEnd {
		return 0
	}

	var total time.Duration
	localStart := start.In(c.loc)
	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, c.loc)

	for day.Before(end) {
		next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, c.loc)

		if nightStart < nightEnd {
			total += overlap(start, end, at(day, nightStart), at(day, nightEnd))
		} else {
			total += overlap(start, end, day, at(day, nightEnd))
			total += overlap(start, end, at(day, nightStart), next)
		}
		day = next
	}
	return total
}

func at(day time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	lo := aStart
	if bStart.After(lo) {
		lo = bStart
	}
	hi := aEnd
	if bEnd.Before(hi) {
		hi = bEnd
	}
	if !hi.After(lo) {
		return 0
	}
	return hi.Sub(lo)
}

// price is round_half_up(minutes/60 × wage × rate).
func price(minutes int64, hourlyWage int64, rate decimal.Decimal) int64 {
	if minutes <= 0 {
		return 0
	}
	return decimal.NewFromInt(minutes).
		Mul(decimal.NewFromInt(hourlyWage)).
		Mul(rate).
		DivRound(minutesPerHour, 0).
		IntPart()
}

func hours(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).DivRound(minutesPerHour, 4)
}

// parseClock reads "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%q is not HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%q has an invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%q has an invalid minute", s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
