package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/opscart/hpc-carbon-reporter/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresStore opens a connection pool and runs migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db, dsn: dsn}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) migrate() error {
	schema, err := postgresFS.ReadFile("migrations/001_postgres_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

const jobColumns = `job_id, username, start_time, end_time,
	cores_used, cores_reserved, memory_used_gb, memory_reserved_gb,
	gpus_used, cpu_time_seconds`

// GetJobs retrieves job records by job ID.
func (s *PostgresStore) GetJobs(ctx context.Context, jobIDs []string) ([]*models.JobRecord, error) {
	query := `SELECT ` + jobColumns + ` FROM job_records WHERE job_id = ANY($1) ORDER BY start_time`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(jobIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListJobsByUser retrieves one user's job records within a period.
func (s *PostgresStore) ListJobsByUser(ctx context.Context, user string, from, to time.Time) ([]*models.JobRecord, error) {
	query := `SELECT ` + jobColumns + ` FROM job_records
		WHERE username = $1 AND start_time >= $2 AND end_time <= $3
		ORDER BY start_time`
	rows, err := s.db.QueryContext(ctx, query, user, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs for user %s: %w", user, err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListJobs retrieves all job records within a period.
func (s *PostgresStore) ListJobs(ctx context.Context, from, to time.Time) ([]*models.JobRecord, error) {
	query := `SELECT ` + jobColumns + ` FROM job_records
		WHERE start_time >= $1 AND end_time <= $2
		ORDER BY start_time`
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func scanJobs(rows *sql.Rows) ([]*models.JobRecord, error) {
	var jobs []*models.JobRecord
	for rows.Next() {
		var job models.JobRecord
		var cpuSeconds int64
		if err := rows.Scan(
			&job.JobID, &job.User, &job.StartTime, &job.EndTime,
			&job.CoresUsed, &job.CoresReserved,
			&job.MemoryUsedGB, &job.MemoryReservedGB,
			&job.GPUsUsed, &cpuSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job record: %w", err)
		}
		job.CPUTimeUsed = time.Duration(cpuSeconds) * time.Second
		jobs = append(jobs, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job records: %w", err)
	}
	return jobs, nil
}

// SaveReport persists a computed emission report.
func (s *PostgresStore) SaveReport(ctx context.Context, report *models.SavedReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	var costAmount sql.NullFloat64
	var costCurrency sql.NullString
	if report.Cost != nil {
		costAmount = sql.NullFloat64{Float64: report.Cost.Amount, Valid: true}
		costCurrency = sql.NullString{String: report.Cost.Currency, Valid: true}
	}

	query := `
		INSERT INTO emission_reports (
			id, username, job_ids, energy_kwh, carbon_g,
			cost_amount, cost_currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		report.ID, report.User, pq.Array(report.JobIDs),
		report.EnergyKWh, report.CarbonG,
		costAmount, costCurrency, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// ListReports retrieves saved reports, newest first. An empty user
// matches all users.
func (s *PostgresStore) ListReports(ctx context.Context, user string, limit int) ([]*models.SavedReport, error) {
	query := `
		SELECT id, username, job_ids, energy_kwh, carbon_g,
			cost_amount, cost_currency, created_at
		FROM emission_reports
		WHERE ($1 = '' OR username = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, user, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.SavedReport
	for rows.Next() {
		var rep models.SavedReport
		var costAmount sql.NullFloat64
		var costCurrency sql.NullString
		if err := rows.Scan(
			&rep.ID, &rep.User, pq.Array(&rep.JobIDs),
			&rep.EnergyKWh, &rep.CarbonG,
			&costAmount, &costCurrency, &rep.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if costAmount.Valid {
			rep.Cost = &models.CostEstimate{Amount: costAmount.Float64, Currency: costCurrency.String}
		}
		reports = append(reports, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}
	return reports, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
