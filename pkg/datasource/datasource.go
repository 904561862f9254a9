package datasource

import (
	"context"

	"github.com/opscart/hpc-carbon-reporter/pkg/models"
)

// JobSource defines an alternative source of job records for sites that
// expose batch accounting through an exporter instead of the database.
type JobSource interface {
	GetJobs(ctx context.Context, jobIDs []string) ([]*models.JobRecord, error)
	IsAvailable(ctx context.Context) bool
	Name() string
}
