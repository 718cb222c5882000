package services

import (
	"github.com/sjperalta/workpermit-api/internal/jobs"
)

type JobService struct {
	worker *jobs.Worker
}

func NewJobService(worker *jobs.Worker) *JobService {
	return &JobService{
		worker: worker,
	}
}

// GetStatus reports background worker counters
func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
