package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mfarouk/hunterhall/internal/config"
	"github.com/mfarouk/hunterhall/internal/middleware"
	"github.com/mfarouk/hunterhall/internal/portal"
	"github.com/mfarouk/hunterhall/internal/quest"
)

// fastingNoticeHour is when the eve-of-fast reminder goes out.
const fastingNoticeHour = 20

// Scheduler drives the time-based engines: portal ticks, the daily quest
// launch, the nightly judgment cycle and the fasting reminders. The
// launch and judgment jobs poll every minute and gate on the configured
// clock times; the engines' own day stamps make the calls idempotent, so
// a restart mid-day never double-fires and a missed window catches up on
// the next tick.
type Scheduler struct {
	sched    gocron.Scheduler
	cfg      *config.Config
	launcher *quest.Launcher
	judge    *quest.Judge
	engine   *portal.Engine
	limiter  *middleware.RateLimiter
	backupFn func(context.Context) error
	logger   *slog.Logger
}

func New(
	cfg *config.Config,
	launcher *quest.Launcher,
	judge *quest.Judge,
	engine *portal.Engine,
	limiter *middleware.RateLimiter,
	backupFn func(context.Context) error,
	logger *slog.Logger,
) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{
		sched:    sched,
		cfg:      cfg,
		launcher: launcher,
		judge:    judge,
		engine:   engine,
		limiter:  limiter,
		backupFn: backupFn,
		logger:   logger,
	}, nil
}

// Start registers the jobs and begins running them.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.sched.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() { s.minuteTick(ctx) }),
	); err != nil {
		return fmt.Errorf("register minute tick: %w", err)
	}

	if _, err := s.sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(fastingNoticeHour, 0, 0))),
		gocron.NewTask(func() {
			if _, err := s.launcher.FastingReminders(ctx, time.Now()); err != nil {
				s.logger.Error("fasting reminders", "error", err)
			}
		}),
	); err != nil {
		return fmt.Errorf("register fasting reminders: %w", err)
	}

	if s.limiter != nil {
		if _, err := s.sched.NewJob(
			gocron.DurationJob(time.Hour),
			gocron.NewTask(s.limiter.Cleanup),
		); err != nil {
			return fmt.Errorf("register limiter cleanup: %w", err)
		}
	}

	if s.backupFn != nil {
		if _, err := s.sched.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
			gocron.NewTask(func() {
				if err := s.backupFn(ctx); err != nil {
					s.logger.Error("scheduled backup", "error", err)
				}
			}),
		); err != nil {
			return fmt.Errorf("register backup job: %w", err)
		}
	}

	s.sched.Start()
	s.logger.Info("scheduler started",
		"launch_hour", s.cfg.LaunchHour,
		"judgment_hour", s.cfg.JudgmentHour,
		"judgment_minute", s.cfg.JudgmentMinute)
	return nil
}

// minuteTick runs the per-minute maintenance: portal lifecycle first, then
// the clock-gated daily jobs.
func (s *Scheduler) minuteTick(ctx context.Context) {
	now := time.Now()

	if err := s.engine.Tick(ctx, now); err != nil {
		s.logger.Error("portal tick", "error", err)
	}

	if now.Hour() >= s.cfg.LaunchHour {
		if _, err := s.launcher.LaunchDaily(ctx, now); err != nil {
			s.logger.Error("daily launch", "error", err)
		}
	}

	if afterJudgmentCutoff(now, s.cfg.JudgmentHour, s.cfg.JudgmentMinute) {
		if _, err := s.judge.Run(ctx, now); err != nil {
			s.logger.Error("judgment run", "error", err)
		}
	}
}

func afterJudgmentCutoff(now time.Time, hour, minute int) bool {
	if now.Hour() != hour {
		return now.Hour() > hour
	}
	return now.Minute() >= minute
}

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
