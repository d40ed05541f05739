package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/interfaces"
)

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name        string
	schedule    string
	description string
	handler     func() error
	cronID      cron.EntryID
	lastRun     *time.Time
	isRunning   bool
	lastError   string
}

// Service implements SchedulerService over robfig/cron. Jobs are registered
// before Start; each job runs alone (a still-running previous invocation
// skips the new fire).
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	jobMu   sync.Mutex // protects jobs map and per-entry state
	jobs    map[string]*jobEntry
	running bool
}

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) interfaces.SchedulerService {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// RegisterJob adds a named job with a cron schedule.
func (s *Service) RegisterJob(name, schedule, description string, handler func() error) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.running {
		return fmt.Errorf("cannot register job %q: scheduler already running", name)
	}
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	entry := &jobEntry{
		name:        name,
		schedule:    schedule,
		description: description,
		handler:     handler,
	}

	cronID, err := s.cron.AddFunc(schedule, func() { s.runJob(entry) })
	if err != nil {
		return fmt.Errorf("failed to add cron job %q: %w", name, err)
	}
	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job", name).
		Str("schedule", schedule).
		Msg("Scheduled job registered")

	return nil
}

// runJob executes one job fire, skipping if the previous run is still going.
func (s *Service) runJob(entry *jobEntry) {
	s.jobMu.Lock()
	if entry.isRunning {
		s.jobMu.Unlock()
		s.logger.Warn().Str("job", entry.name).Msg("Skipping job fire: previous run still in progress")
		return
	}
	entry.isRunning = true
	s.jobMu.Unlock()

	start := time.Now()
	s.logger.Debug().Str("job", entry.name).Msg("Scheduled job starting")

	err := entry.handler()

	s.jobMu.Lock()
	entry.isRunning = false
	entry.lastRun = &start
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.jobMu.Unlock()

	if err != nil {
		s.logger.Error().
			Str("job", entry.name).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("Scheduled job failed")
		return
	}
	s.logger.Info().
		Str("job", entry.name).
		Dur("duration", time.Since(start)).
		Msg("Scheduled job completed")
}

// Start begins firing registered jobs.
func (s *Service) Start() error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.cron.Start()
	s.running = true

	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Service) Stop() {
	s.jobMu.Lock()
	if !s.running {
		s.jobMu.Unlock()
		return
	}
	s.running = false
	s.jobMu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// Jobs returns the status of all registered jobs.
func (s *Service) Jobs() []interfaces.JobStatus {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	statuses := make([]interfaces.JobStatus, 0, len(s.jobs))
	for _, entry := range s.jobs {
		status := interfaces.JobStatus{
			Name:        entry.name,
			Schedule:    entry.schedule,
			Description: entry.description,
			LastRun:     entry.lastRun,
			IsRunning:   entry.isRunning,
			LastError:   entry.lastError,
		}
		if s.running {
			next := s.cron.Entry(entry.cronID).Next
			if !next.IsZero() {
				status.NextRun = &next
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}
