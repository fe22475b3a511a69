package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler manages background job scheduling and execution
type Scheduler struct {
	cron      *cron.Cron
	locks     *LockManager
	registry  *Registry
	mu        sync.Mutex
	isRunning bool
}

var (
	scheduler *Scheduler
	once      sync.Once
)

// GetScheduler returns the singleton scheduler instance
func GetScheduler() *Scheduler {
	return scheduler
}

// NewScheduler creates a new job scheduler
func NewScheduler(locks *LockManager) *Scheduler {
	once.Do(func() {
		scheduler = &Scheduler{
			cron: cron.New(cron.WithSeconds(), cron.WithChain(
				cron.Recover(cron.DefaultLogger),
			)),
			locks:    locks,
			registry: GetRegistry(),
		}
	})
	return scheduler
}

// Schedule adds every enabled registered job to the cron scheduler
func (s *Scheduler) Schedule() error {
	for _, job := range s.registry.List() {
		if !job.Enabled {
			log.Info("[jobs] Job %s is disabled, not scheduling", job.Name)
			continue
		}
		name := job.Name
		if _, err := s.cron.AddFunc(job.Schedule, func() {
			s.runJob(name)
		}); err != nil {
			return err
		}
		log.Info("[jobs] Scheduled job %s (%s)", job.Name, job.Schedule)
	}
	return nil
}

// runJob executes a job under the distributed lock
func (s *Scheduler) runJob(jobName string) {
	job, exists := s.registry.Get(jobName)
	if !exists {
		log.Error("[jobs] Job not found: %s", jobName)
		return
	}

	if !s.locks.TryLock(jobName) {
		log.Debug("[jobs] Job %s is already running on another instance, skipping", jobName)
		return
	}
	defer s.locks.Unlock(jobName)

	execution := &JobExecution{
		ID:         uuid.New(),
		JobName:    jobName,
		InstanceID: s.locks.GetInstanceID(),
		Status:     JobStatusRunning,
		StartedAt:  time.Now(),
	}
	if err := db.Create(execution).Error; err != nil {
		log.Error("[jobs] Failed to create execution record: %v", err)
		return
	}

	log.Info("[jobs] Starting job %s (execution: %s)", jobName, execution.ID)

	result, jobErr := s.runWithTimeout(job)

	now := time.Now()
	execution.CompletedAt = &now
	execution.DurationMs = now.Sub(execution.StartedAt).Milliseconds()

	if jobErr != nil {
		execution.Status = JobStatusFailed
		execution.Error = jobErr.Error()
		log.Error("[jobs] Job %s failed: %v", jobName, jobErr)
	} else {
		execution.Status = JobStatusCompleted
		if result != nil {
			if data, err := json.Marshal(result); err == nil {
				execution.Result = string(data)
			}
		}
		log.Info("[jobs] Job %s completed in %dms", jobName, execution.DurationMs)
	}

	if err := db.Save(execution).Error; err != nil {
		log.Error("[jobs] Failed to update execution record: %v", err)
	}
}

// runWithTimeout executes a job handler bounded by its timeout
func (s *Scheduler) runWithTimeout(job *JobDefinition) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
	defer cancel()

	type jobResult struct {
		result interface{}
		err    error
	}
	done := make(chan jobResult, 1)
	go func() {
		result, err := job.Handler(ctx)
		done <- jobResult{result: result, err: err}
	}()

	select {
	case res := <-done:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	log.Info("[jobs] Scheduler started with %d jobs", s.registry.Count())
}

// Stop stops the scheduler gracefully, waiting for running jobs
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Info("[jobs] Scheduler stopped")
}

// RunNow triggers immediate execution of a job in the background
func (s *Scheduler) RunNow(jobName string) bool {
	if _, exists := s.registry.Get(jobName); !exists {
		return false
	}
	go s.runJob(jobName)
	return true
}

// IsRunning reports whether any instance currently holds the job's lock
func (s *Scheduler) IsRunning(jobName string) bool {
	return s.locks.IsLocked(jobName)
}
