package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/albamate/albamate-backend/internal/pkg/database"
)

// Scheme is one forward-only schema step. Index is its position in history and
// must never be reused.
type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create table: stores",
		Query: `
		CREATE TABLE IF NOT EXISTS stores (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			latitude      DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
			longitude     DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
			radius_meters DOUBLE PRECISION NOT NULL CHECK (radius_meters > 0),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Index:       2,
		Description: "Create table: employees",
		Query: `
		CREATE TABLE IF NOT EXISTS employees (
			id         TEXT PRIMARY KEY,
			full_name  TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		);`,
	},
	{
		Index:       3,
		Description: "Create table: wage_assignments",
		Query: `
		CREATE TABLE IF NOT EXISTS wage_assignments (
			employee_id TEXT NOT NULL REFERENCES employees(id),
			store_id    TEXT NOT NULL REFERENCES stores(id),
			hourly_wage BIGINT NOT NULL CHECK (hourly_wage >= 0),
			active      BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (employee_id, store_id)
		);`,
	},
	{
		Index:       4,
		Description: "Create table: store_members",
		Query: `
		CREATE TABLE IF NOT EXISTS store_members (
			user_id  TEXT NOT NULL,
			store_id TEXT NOT NULL REFERENCES stores(id),
			role     TEXT NOT NULL CHECK (role IN ('store_master', 'employee')),
			PRIMARY KEY (user_id, store_id)
		);`,
	},
	{
		Index:       5,
		Description: "Create table: attendances",
		Query: `
		CREATE TABLE IF NOT EXISTS attendances (
			id                  UUID PRIMARY KEY,
			employee_id         TEXT NOT NULL REFERENCES employees(id),
			store_id            TEXT NOT NULL REFERENCES stores(id),
			work_date           DATE NOT NULL,
			check_in_time       TIMESTAMPTZ NOT NULL,
			check_out_time      TIMESTAMPTZ,
			check_in_latitude   DOUBLE PRECISION,
			check_in_longitude  DOUBLE PRECISION,
			check_out_latitude  DOUBLE PRECISION,
			check_out_longitude DOUBLE PRECISION,
			location_verified   BOOLEAN NOT NULL DEFAULT FALSE,
			applied_hourly_wage BIGINT NOT NULL,
			registered_by       TEXT,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT attendances_checkout_after_checkin CHECK (check_out_time IS NULL OR check_out_time > check_in_time),
			CONSTRAINT attendances_employee_work_date_key UNIQUE (employee_id, work_date)
		);`,
	},
	{
		Index:       6,
		Description: "Create index: one open attendance per employee",
		Query: `
		CREATE UNIQUE INDEX IF NOT EXISTS attendances_one_open_idx
			ON attendances (employee_id) WHERE check_out_time IS NULL;
		CREATE INDEX IF NOT EXISTS attendances_store_check_in_idx
			ON attendances (employee_id, store_id, check_in_time);`,
	},
	{
		Index:       7,
		Description: "Create table: payroll_policies",
		Query: `
		CREATE TABLE IF NOT EXISTS payroll_policies (
			store_id                 TEXT PRIMARY KEY REFERENCES stores(id),
			tax_policy_type          TEXT NOT NULL CHECK (tax_policy_type IN ('FLAT_WITHHOLDING', 'INSURANCE_BASED')),
			night_work_rate          NUMERIC(4, 2) NOT NULL,
			night_work_start_time    TEXT NOT NULL,
			night_work_end_time      TEXT NOT NULL,
			overtime_rate            NUMERIC(4, 2) NOT NULL,
			regular_hours_per_day    NUMERIC(4, 2) NOT NULL,
			weekly_allowance_enabled BOOLEAN NOT NULL,
			insurance_tax_rate       NUMERIC(6, 5),
			created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Index:       8,
		Description: "Create table: payrolls",
		Query: `
		CREATE TABLE IF NOT EXISTS payrolls (
			id               UUID PRIMARY KEY,
			employee_id      TEXT NOT NULL REFERENCES employees(id),
			store_id         TEXT NOT NULL REFERENCES stores(id),
			start_date       DATE NOT NULL,
			end_date         DATE NOT NULL,
			total_hours      NUMERIC(10, 4) NOT NULL,
			regular_hours    NUMERIC(10, 4) NOT NULL,
			overtime_hours   NUMERIC(10, 4) NOT NULL,
			night_hours      NUMERIC(10, 4) NOT NULL,
			regular_wage     BIGINT NOT NULL,
			overtime_wage    BIGINT NOT NULL,
			night_work_wage  BIGINT NOT NULL,
			weekly_allowance BIGINT NOT NULL,
			gross_wage       BIGINT NOT NULL,
			tax_policy_type  TEXT NOT NULL,
			tax_rate         NUMERIC(6, 5) NOT NULL,
			tax_amount       BIGINT NOT NULL,
			deductions       BIGINT NOT NULL DEFAULT 0 CHECK (deductions >= 0),
			net_wage         BIGINT NOT NULL,
			status           TEXT NOT NULL CHECK (status IN ('DRAFT', 'CONFIRMED', 'PAID', 'CANCELLED')),
			payment_date     DATE,
			cancel_reason    TEXT,
			confirmed_at     TIMESTAMPTZ,
			version          INTEGER NOT NULL DEFAULT 1,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK (start_date <= end_date),
			CHECK (gross_wage = regular_wage + overtime_wage + night_work_wage + weekly_allowance),
			CHECK (net_wage = gross_wage - tax_amount - deductions)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS payrolls_active_period_idx
			ON payrolls (employee_id, store_id, start_date, end_date) WHERE status <> 'CANCELLED';`,
	},
	{
		Index:       9,
		Description: "Create table: payroll_details",
		Query: `
		CREATE TABLE IF NOT EXISTS payroll_details (
			id               UUID PRIMARY KEY,
			payroll_id       UUID NOT NULL REFERENCES payrolls(id) ON DELETE CASCADE,
			attendance_id    UUID NOT NULL REFERENCES attendances(id),
			work_date        DATE NOT NULL,
			start_time       TIMESTAMPTZ NOT NULL,
			end_time         TIMESTAMPTZ NOT NULL,
			total_hours      NUMERIC(8, 4) NOT NULL,
			regular_hours    NUMERIC(8, 4) NOT NULL,
			overtime_hours   NUMERIC(8, 4) NOT NULL,
			night_hours      NUMERIC(8, 4) NOT NULL,
			base_hourly_wage BIGINT NOT NULL,
			regular_wage     BIGINT NOT NULL,
			overtime_wage    BIGINT NOT NULL,
			night_work_wage  BIGINT NOT NULL,
			daily_wage       BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS payroll_details_payroll_idx ON payroll_details (payroll_id);`,
	},
}

// Migrate applies every scheme step not yet recorded in schema_migrations, each
// in its own transaction.
func Migrate(ctx context.Context, db *database.DB) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			step        INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, step := range scheme {
		err := WithTransaction(ctx, db, func(tx pgx.Tx) error {
			var applied bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE step = $1)`, step.Index).Scan(&applied); err != nil {
				return err
			}
			if applied {
				return nil
			}

			if _, err := tx.Exec(ctx, step.Query); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (step, description) VALUES ($1, $2)`, step.Index, step.Description); err != nil {
				return err
			}

			slog.Info("migration applied", "index", step.Index, "description", step.Description)
			return nil
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", step.Index, step.Description, err)
		}
	}

	return nil
}
