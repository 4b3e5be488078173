package cron

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotDue is returned by jobs that had nothing to do this cycle, e.g. a
// weekly report outside its window. The service counts it as a skip.
var ErrNotDue = errors.New("job not due")

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry tracks registered cron jobs. Names are unique.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with the provided jobs.
func NewRegistry(jobs ...Job) (*Registry, error) {
	registry := &Registry{}
	for _, job := range jobs {
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a job to the registry. Nil jobs are ignored.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	for _, existing := range r.jobs {
		if existing.Name() == job.Name() {
			return fmt.Errorf("cron job %q registered twice", job.Name())
		}
	}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns the registered jobs in the order they were added.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name())
	}
	return names
}
