package healthtip

import (
	"context"
	"fmt"
	"time"

	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/internal/repository"
	"github.com/carepulse/hms-api/internal/service/notifier"
	"github.com/carepulse/hms-api/pkg/logger"
	"github.com/carepulse/hms-api/pkg/metrics"
)

const (
	DefaultInterval = time.Minute
	DefaultTimezone = "Asia/Kolkata"

	// Generation fires inside a 5-minute window at the top of each slot
	// hour, so a 1-minute tick gets several chances per slot.
	windowMinutes = 5
)

// Generator produces tip content for a slot. The production implementation
// is an external text generator; it is opaque to the scheduler.
type Generator interface {
	Generate(ctx context.Context, slot model.TipSlot) (*model.HealthTip, error)
}

// Scheduler generates and broadcasts a health tip twice a day, at 9AM and
// 9PM in the configured timezone. A single in-memory guard keyed by
// {date}_{slot} collapses the several ticks that land inside one window into
// one generation. The guard is process-local: a restart inside a window may
// regenerate that slot's tip, which is accepted.
type Scheduler struct {
	tips      repository.HealthTipRepository
	notifier  *notifier.Service
	generator Generator

	interval   time.Duration
	loc        *time.Location
	nowFn      func() time.Time
	lastTipKey string

	logger  *logger.Logger
	metrics *metrics.Metrics

	cancel context.CancelFunc
	done   chan struct{}
}

type Config struct {
	Interval time.Duration
	Timezone string
}

func NewScheduler(
	tips repository.HealthTipRepository,
	notifSvc *notifier.Service,
	generator Generator,
	cfg Config,
	logger *logger.Logger,
	m *metrics.Metrics,
) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		tips:      tips,
		notifier:  notifSvc,
		generator: generator,
		interval:  cfg.Interval,
		loc:       loc,
		nowFn:     time.Now,
		logger:    logger,
		metrics:   m,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop cancels future ticks; an in-flight check runs to completion.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting health tip scheduler", "timezone", s.loc.String())
	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down health tip scheduler")
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	if err := s.Check(ctx); err != nil {
		s.logger.Error(err, "health tip check failed")
	}
}

// Check generates the current slot's tip if the wall clock sits inside a
// generation window and the guard has not fired for it yet. Generation
// failure leaves the guard unset so the next tick inside the window retries.
func (s *Scheduler) Check(ctx context.Context) error {
	now := s.nowFn().In(s.loc)

	slot, ok := slotFor(now)
	if !ok {
		return nil
	}

	key := fmt.Sprintf("%s_%s", now.Format("2006-01-02"), slot)
	if key == s.lastTipKey {
		return nil
	}

	if _, err := s.generate(ctx, slot); err != nil {
		return err
	}
	s.lastTipKey = key
	return nil
}

// TriggerNow generates and broadcasts a tip for the given slot on demand.
// It bypasses both the window check and the guard, and deliberately does not
// set the guard: a manual run must not suppress the scheduled one.
func (s *Scheduler) TriggerNow(ctx context.Context, slot model.TipSlot) (*model.HealthTip, error) {
	return s.generate(ctx, slot)
}

func (s *Scheduler) generate(ctx context.Context, slot model.TipSlot) (*model.HealthTip, error) {
	tip, err := s.generator.Generate(ctx, slot)
	if err != nil {
		s.metrics.TipGenerationErrors.Inc()
		return nil, fmt.Errorf("failed to generate %s health tip: %w", slot, err)
	}

	tip.ScheduledFor = slot
	tip.IsActive = true
	tip.GeneratedAt = s.nowFn()

	if err := s.tips.Create(ctx, tip); err != nil {
		s.metrics.TipGenerationErrors.Inc()
		return nil, fmt.Errorf("failed to persist health tip: %w", err)
	}

	s.notifier.NotifyHealthTip(tip)
	s.metrics.TipsGenerated.WithLabelValues(string(slot)).Inc()
	s.logger.Info("health tip generated", "slot", string(slot), "title", tip.Title)

	return tip, nil
}

// slotFor maps a wall-clock time to the slot whose window it falls in.
func slotFor(t time.Time) (model.TipSlot, bool) {
	if t.Minute() >= windowMinutes {
		return "", false
	}
	switch t.Hour() {
	case 9:
		return model.TipSlotMorning, true
	case 21:
		return model.TipSlotEvening, true
	}
	return "", false
}
