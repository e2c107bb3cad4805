package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/tasknest/tasknest-api/internal/config"
	"github.com/tasknest/tasknest-api/internal/platform/logger"
)

// Scheduler owns the cron runner that drives both background cycles: the
// daily occurrence generation at the configured wall-clock time, and the
// reminder scan every scan interval.
type Scheduler struct {
	cron       *cron.Cron
	generator  *OccurrenceGenerator
	dispatcher *ReminderDispatcher
	cfg        config.SchedulerConfig
	logger     *slog.Logger
}

// New assembles a Scheduler around the two cycle runners. Each cron entry
// is wrapped so a cycle still in flight makes the next tick a no-op skip,
// and a panicking cycle is recovered and logged instead of killing the
// process.
func New(cfg config.SchedulerConfig, generator *OccurrenceGenerator, dispatcher *ReminderDispatcher, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "scheduler"))

	cl := cronLogger{log}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cl),
		cron.Recover(cl),
	))

	return &Scheduler{
		cron:       c,
		generator:  generator,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     log,
	}
}

// Start registers the two cycles and starts the runner. The generation
// entry fires at the configured HH:MM each day; the scan entry fires every
// scan interval.
func (s *Scheduler) Start(ctx context.Context) error {
	hour, minute := s.cfg.GenerationClock()
	genSpec := fmt.Sprintf("%d %d * * *", minute, hour)

	jobCtx := logger.WithLogger(context.WithoutCancel(ctx), s.logger)

	if _, err := s.cron.AddFunc(genSpec, func() {
		if _, err := s.generator.RunCycle(jobCtx); err != nil {
			s.logger.Error("generation cycle failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule generation cycle: %w", err)
	}

	scanSpec := fmt.Sprintf("@every %s", s.cfg.ScanInterval)
	if _, err := s.cron.AddFunc(scanSpec, func() {
		if _, err := s.dispatcher.RunCycle(jobCtx); err != nil {
			s.logger.Error("reminder scan failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder scan: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		slog.String("generation_time", s.cfg.GenerationTime),
		slog.String("scan_interval", s.cfg.ScanInterval.String()),
		slog.String("lookahead", s.cfg.Lookahead.String()))
	return nil
}

// Stop halts the runner and waits for in-flight cycles to finish, or for
// ctx to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("scheduler stopping")
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown interrupted: %w", ctx.Err())
	}
}

// cronLogger adapts slog to the cron.Logger interface so skip and recover
// events land in the structured log.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, cronAttrs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	attrs := append(cronAttrs(keysAndValues), slog.String("error", err.Error()))
	l.log.Error(msg, attrs...)
}

func cronAttrs(keysAndValues []interface{}) []any {
	attrs := make([]any, 0, len(keysAndValues))
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		attrs = append(attrs, slog.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return attrs
}
