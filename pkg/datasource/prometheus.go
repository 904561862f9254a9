package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/opscart/hpc-carbon-reporter/pkg/models"
)

// PrometheusSource reads job records from a Prometheus server scraping a
// batch accounting exporter (pbs_job_* metric family, one series per
// finished job keyed by the job_id label).
type PrometheusSource struct {
	client v1.API
	url    string
}

// NewPrometheusSource builds a source for the given server URL.
func NewPrometheusSource(url string) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{Address: url})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}
	return &PrometheusSource{client: v1.NewAPI(client), url: url}, nil
}

// GetJobs retrieves one record per job ID. Jobs missing from the
// exporter are skipped rather than failing the whole batch.
func (p *PrometheusSource) GetJobs(ctx context.Context, jobIDs []string) ([]*models.JobRecord, error) {
	jobs := make([]*models.JobRecord, 0, len(jobIDs))
	for _, id := range jobIDs {
		job, err := p.getJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if job != nil {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (p *PrometheusSource) getJob(ctx context.Context, jobID string) (*models.JobRecord, error) {
	start, user, found, err := p.queryJob(ctx, "pbs_job_start_time_seconds", jobID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	end, _, _, err := p.queryJob(ctx, "pbs_job_end_time_seconds", jobID)
	if err != nil {
		return nil, err
	}

	job := &models.JobRecord{
		JobID:     jobID,
		User:      user,
		StartTime: time.Unix(int64(start), 0),
		EndTime:   time.Unix(int64(end), 0),
	}

	coresUsed, _, _, err := p.queryJob(ctx, "pbs_job_cores_used", jobID)
	if err != nil {
		return nil, err
	}
	coresReserved, _, _, err := p.queryJob(ctx, "pbs_job_cores_reserved", jobID)
	if err != nil {
		return nil, err
	}
	memUsed, _, _, err := p.queryJob(ctx, "pbs_job_memory_used_bytes", jobID)
	if err != nil {
		return nil, err
	}
	memReserved, _, _, err := p.queryJob(ctx, "pbs_job_memory_reserved_bytes", jobID)
	if err != nil {
		return nil, err
	}
	gpus, _, _, err := p.queryJob(ctx, "pbs_job_gpus", jobID)
	if err != nil {
		return nil, err
	}
	cpuSeconds, _, _, err := p.queryJob(ctx, "pbs_job_cpu_seconds_total", jobID)
	if err != nil {
		return nil, err
	}

	const bytesPerGB = 1e9
	job.CoresUsed = int(coresUsed)
	job.CoresReserved = int(coresReserved)
	job.MemoryUsedGB = memUsed / bytesPerGB
	job.MemoryReservedGB = memReserved / bytesPerGB
	job.GPUsUsed = int(gpus)
	job.CPUTimeUsed = time.Duration(cpuSeconds * float64(time.Second))
	return job, nil
}

// queryJob runs an instant query for one metric of one job and returns
// the value plus the series' user label. found is false when the
// exporter has no series for the job.
func (p *PrometheusSource) queryJob(ctx context.Context, metric, jobID string) (value float64, user string, found bool, err error) {
	query := fmt.Sprintf(`%s{job_id=%q}`, metric, jobID)
	result, warnings, err := p.client.Query(ctx, query, time.Now())
	if err != nil {
		return 0, "", false, fmt.Errorf("query %s failed: %w", metric, err)
	}
	if len(warnings) > 0 {
		fmt.Printf("[WARN] Prometheus: %v\n", warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok || len(vector) == 0 {
		return 0, "", false, nil
	}

	sample := vector[0]
	return float64(sample.Value), string(sample.Metric["user"]), true, nil
}

// IsAvailable checks whether the server answers queries.
func (p *PrometheusSource) IsAvailable(ctx context.Context) bool {
	_, _, err := p.client.Query(ctx, "up", time.Now())
	return err == nil
}

func (p *PrometheusSource) Name() string {
	return "Prometheus"
}
