// Package schedule runs periodic maintenance jobs on cron specs.
package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

var jobRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "memoryd",
		Subsystem: "schedule",
		Name:      "job_runs_total",
		Help:      "Scheduled job runs by job and result",
	},
	[]string{"job", "result"},
)

func init() {
	prometheus.MustRegister(jobRuns)
}

// CronScheduler runs jobs on standard five-field specs or descriptors such
// as "@every 30m" and "@daily". A job never overlaps with itself; a tick that
// finds the previous run still going is skipped.
type CronScheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	ctx     context.Context
	log     zerolog.Logger
}

func NewCronScheduler(logger *zerolog.Logger) *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
		log:     zerolog.Nop(),
	}
	if logger != nil {
		c.log = logger.With().Str("component", "schedule").Logger()
	}
	return c
}

// AddJob schedules job. An empty spec disables it.
func (c *CronScheduler) AddJob(job Job, spec string) error {
	name := job.Name()
	if spec == "" {
		c.log.Info().Str("job", name).Msg("job disabled")
		return nil
	}
	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		c.log.Error().Err(err).Str("job", name).Str("spec", spec).Msg("schedule job failed")
		return err
	}
	c.entries[name] = entryID
	c.log.Info().Str("job", name).Str("spec", spec).Msg("job scheduled")
	return nil
}

// Next returns the next run time of a scheduled job.
func (c *CronScheduler) Next(name string) (time.Time, bool) {
	id, ok := c.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return c.cron.Entry(id).Next, true
}

// Start runs the scheduler until Stop. Jobs receive ctx.
func (c *CronScheduler) Start(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
	c.cron.Start()
}

// Stop stops scheduling and waits for running jobs.
func (c *CronScheduler) Stop() {
	<-c.cron.Stop().Done()
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		log := c.log.With().Str("job", job.Name()).Str("spec", spec).Logger()
		if !running.CompareAndSwap(false, true) {
			jobRuns.WithLabelValues(job.Name(), "skipped").Inc()
			log.Info().Msg("job skipped: still running")
			return
		}
		defer running.Store(false)
		runJob(c.ctx, job, log)
	}
}

func runJob(ctx context.Context, job Job, log zerolog.Logger) {
	start := time.Now()
	log.Debug().Msg("job started")
	err := job.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		jobRuns.WithLabelValues(job.Name(), "error").Inc()
		log.Error().Err(err).Dur("duration", elapsed).Msg("job finished")
		return
	}
	jobRuns.WithLabelValues(job.Name(), "ok").Inc()
	log.Info().Dur("duration", elapsed).Msg("job finished")
}
