package generator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/logger"
)

// SimulatorConfig configures a Simulator. Zero delays complete immediately.
type SimulatorConfig struct {
	Templates []Template
	Schedule  Schedule
	MinDelay  time.Duration
	MaxDelay  time.Duration
	Seed      int64 // 0 seeds from the clock
}

// Simulator picks a canned template and waits a random latency before
// returning it.
type Simulator struct {
	templates []Template
	sched     Schedule
	minDelay  time.Duration
	maxDelay  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator; empty fields fall back to the defaults.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	if len(cfg.Templates) == 0 {
		cfg.Templates = DefaultTemplates
	}
	if cfg.Schedule.Stride <= 0 {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		templates: cfg.Templates,
		sched:     cfg.Schedule,
		minDelay:  cfg.MinDelay,
		maxDelay:  cfg.MaxDelay,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) Mode() string { return domain.AIModeSimulated }

func (s *Simulator) Generate(ctx context.Context, video domain.Video) (domain.GenerationResult, error) {
	tpl, delay := s.draw()

	logger.With(logger.Fields{"template": tpl.ID}).
		WithDuration(delay.Milliseconds()).
		Debug(ctx, "Simulating generation with template %q", tpl.Title)

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domain.GenerationResult{}, domain.NewGenerationError("simulation cancelled", ctx.Err())
		}
	}

	return Build(tpl, video, s.sched, domain.AIModeSimulatedEnhanced), nil
}

func (s *Simulator) draw() (Template, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl := s.templates[s.rng.Intn(len(s.templates))]
	delay := s.minDelay
	if span := s.maxDelay - s.minDelay; span > 0 {
		delay += time.Duration(s.rng.Int63n(int64(span) + 1))
	}
	return tpl, delay
}
