package interfaces

import "time"

// JobStatus is a read-only snapshot of a registered scheduled job.
type JobStatus struct {
	Name        string
	Schedule    string
	Description string
	LastRun     *time.Time
	NextRun     *time.Time
	IsRunning   bool
	LastError   string
}

// SchedulerService manages periodic jobs (quota reset, bulletin refresh).
type SchedulerService interface {
	// RegisterJob adds a job with a cron schedule. Must be called before Start.
	RegisterJob(name, schedule, description string, handler func() error) error

	// Start begins firing registered jobs.
	Start() error

	// Stop halts the scheduler and waits for running jobs to finish.
	Stop()

	// Jobs returns the status of all registered jobs.
	Jobs() []JobStatus
}
