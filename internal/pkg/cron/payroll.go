package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albamate/albamate-backend/internal/domain/employee"
	"github.com/albamate/albamate-backend/internal/domain/payroll"
)

// PayrollJobs drafts last month's payroll for every active employee/store pair.
type PayrollJobs struct {
	wages       employee.WageAssignmentRepository
	payrolls    payroll.PayrollService
	loc         *time.Location
	batchDay    int
	concurrency int
	now         func() time.Time

	mu      sync.Mutex
	lastRun string // YYYY-MM of the last completed batch
}

func NewPayrollJobs(
	wages employee.WageAssignmentRepository,
	payrolls payroll.PayrollService,
	loc *time.Location,
	batchDay int,
	concurrency int,
) *PayrollJobs {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PayrollJobs{
		wages:       wages,
		payrolls:    payrolls,
		loc:         loc,
		batchDay:    batchDay,
		concurrency: concurrency,
		now:         time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("monthly_payroll_draft", interval, j.DraftPreviousMonth)
}

// DraftPreviousMonth only does work on the batch day, once per month.
func (j *PayrollJobs) DraftPreviousMonth(ctx context.Context) error {
	today := j.now().In(j.loc)
	if today.Day() != j.batchDay {
		return nil
	}

	month := today.Format("2006-01")
	j.mu.Lock()
	if j.lastRun == month {
		j.mu.Unlock()
		return nil
	}
	j.mu.Unlock()

	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, j.loc)
	start := firstOfMonth.AddDate(0, -1, 0)
	end := firstOfMonth.AddDate(0, 0, -1)

	if err := j.draftPeriod(ctx, start, end); err != nil {
		return err
	}

	j.mu.Lock()
	j.lastRun = month
	j.mu.Unlock()
	return nil
}

func (j *PayrollJobs) draftPeriod(ctx context.Context, start, end time.Time) error {
	assignments, err := j.wages.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list wage assignments: %w", err)
	}

	slog.Info("cron: drafting payrolls",
		"start_date", start.Format("2006-01-02"),
		"end_date", end.Format("2006-01-02"),
		"assignments", len(assignments),
	)

	var drafted, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for _, a := range assignments {
		a := a
		g.Go(func() error {
			_, err := j.payrolls.Recalculate(gctx, payroll.CalculatePayrollRequest{
				EmployeeID: a.EmployeeID,
				StoreID:    a.StoreID,
				StartDate:  start.Format("2006-01-02"),
				EndDate:    end.Format("2006-01-02"),
			})
			switch {
			case err == nil:
				drafted.Add(1)
			case errors.Is(err, payroll.ErrPayrollAlreadyConfirmed):
				skipped.Add(1)
			case errors.Is(err, context.Canceled):
				return err
			default:
				// One bad pair must not stop the rest of the batch
				failed.Add(1)
				slog.Error("cron: payroll draft failed",
					"employee_id", a.EmployeeID,
					"store_id", a.StoreID,
					"error", err,
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("cron: payroll drafts finished",
		"drafted", drafted.Load(),
		"skipped", skipped.Load(),
		"failed", failed.Load(),
	)
	if failed.Load() > 0 {
		return fmt.Errorf("%d payroll drafts failed", failed.Load())
	}
	return nil
}
