package storage

import (
	"context"
	"time"

	"github.com/opscart/hpc-carbon-reporter/pkg/models"
)

// Store defines the interface to the job-record database populated by
// the accounting-log scraper, plus persistence for computed reports.
type Store interface {
	GetJobs(ctx context.Context, jobIDs []string) ([]*models.JobRecord, error)
	ListJobsByUser(ctx context.Context, user string, from, to time.Time) ([]*models.JobRecord, error)
	ListJobs(ctx context.Context, from, to time.Time) ([]*models.JobRecord, error)

	SaveReport(ctx context.Context, report *models.SavedReport) error
	ListReports(ctx context.Context, user string, limit int) ([]*models.SavedReport, error)

	Ping(ctx context.Context) error
	Close() error
}
