package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 10 * time.Minute

var ErrInvalidSchedule = errors.New("invalid cron schedule")

// Job is a named unit of scheduled work. Run receives a context bounded
// by Timeout.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

type Entry struct {
	Name string    `json:"name"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
}

// Scheduler runs jobs on standard five-field cron schedules. A job whose
// previous run is still going is skipped, and a panicking job is logged
// without stopping the scheduler.
type Scheduler struct {
	cron *cron.Cron

	mu   sync.Mutex
	jobs map[cron.EntryID]Job
}

func New(location *time.Location) *Scheduler {
	if location == nil {
		location = time.Local
	}
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs: make(map[cron.EntryID]Job),
	}
}

// ValidateSpec accepts five-field cron expressions such as "0 10 * * 1-5".
// Descriptors like "@daily" are rejected.
func ValidateSpec(spec string) error {
	if fields := strings.Fields(spec); len(fields) != 5 {
		return fmt.Errorf("%w %q: expected 5 fields, got %d", ErrInvalidSchedule, spec, len(fields))
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, spec, err)
	}
	return nil
}

func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no run function", job.Name)
	}
	if err := ValidateSpec(job.Spec); err != nil {
		return err
	}
	if job.Timeout <= 0 {
		job.Timeout = defaultJobTimeout
	}

	id, err := s.cron.AddFunc(job.Spec, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
	}

	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()

	log.Printf("[INFO] Scheduled job: name=%s, spec=%q", job.Name, job.Spec)
	return nil
}

func (s *Scheduler) run(job Job) {
	runID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
	defer cancel()

	log.Printf("[INFO] Job started: name=%s, run_id=%s", job.Name, runID)
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Printf("[ERROR] Job failed: name=%s, run_id=%s, duration=%s, error=%v", job.Name, runID, time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("[INFO] Job finished: name=%s, run_id=%s, duration=%s", job.Name, runID, time.Since(start).Round(time.Millisecond))
}

// Entries lists scheduled jobs ordered by name. Next is zero until the
// scheduler has started.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.jobs))
	for id, job := range s.jobs {
		entries = append(entries, Entry{Name: job.Name, Spec: job.Spec, Next: s.cron.Entry(id).Next})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.Entries() {
		log.Printf("[INFO] Next run: name=%s, at=%s", e.Name, e.Next.Format(time.RFC3339))
	}
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}
