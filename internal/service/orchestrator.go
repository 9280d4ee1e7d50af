package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/generator"
	"github.com/timmy/clueso/internal/logger"
	"github.com/timmy/clueso/internal/repository"
)

// Archiver receives terminal jobs. Errors are logged and otherwise ignored.
type Archiver interface {
	Save(ctx context.Context, job domain.Job) error
}

// OrchestratorConfig holds worker pool settings.
type OrchestratorConfig struct {
	Workers     int
	Timeout     time.Duration // per attempt, 0 means unbounded
	MaxAttempts int
}

// Orchestrator registers jobs and runs their generation on a worker pool.
// Each submitted id is queued once and popped by exactly one worker, which
// moves the job to a terminal state exactly once.
type Orchestrator struct {
	store    repository.JobStore
	gen      generator.Generator
	archive  Archiver
	workers  int
	timeout  time.Duration
	attempts int

	mu    sync.Mutex
	queue []string
	wake  chan struct{}

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates an orchestrator. archive may be nil.
func NewOrchestrator(store repository.JobStore, gen generator.Generator, archive Archiver, cfg OrchestratorConfig) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Orchestrator{
		store:    store,
		gen:      gen,
		archive:  archive,
		workers:  cfg.Workers,
		timeout:  cfg.Timeout,
		attempts: cfg.MaxAttempts,
		wake:     make(chan struct{}, 1),
	}
}

// Submit registers a processing job for video and queues its generation.
// It never waits for generation.
func (o *Orchestrator) Submit(ctx context.Context, video domain.Video) (domain.Job, error) {
	job, err := o.store.Create(ctx, video)
	if err != nil {
		return domain.Job{}, fmt.Errorf("failed to create job: %w", err)
	}

	o.mu.Lock()
	o.queue = append(o.queue, job.ID)
	depth := len(o.queue)
	o.mu.Unlock()
	o.signal()

	logger.With(logger.Fields{logger.FieldJobID: job.ID, "queue_depth": depth}).
		Info(ctx, "New upload: %s - %s (%s)", job.ID, video.OriginalName, domain.FormatMegabytes(video.Size))
	return job, nil
}

// Pending returns the number of queued jobs not yet picked up.
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *Orchestrator) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Start launches the workers. It is a no-op if already running.
func (o *Orchestrator) Start(ctx context.Context) {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	if o.running {
		return
	}
	ctx, o.cancel = context.WithCancel(ctx)
	o.running = true

	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go func(workerID int) {
			defer o.wg.Done()
			o.worker(ctx, workerID)
		}(i)
	}
	logger.CtxInfo(ctx, "Started %d generation workers (%s mode)", o.workers, o.gen.Mode())
}

// Stop cancels the workers and waits for them to return. In-flight jobs
// are failed with the cancellation reason; queued ones stay processing.
func (o *Orchestrator) Stop() {
	o.runMu.Lock()
	if !o.running {
		o.runMu.Unlock()
		return
	}
	o.cancel()
	o.running = false
	o.runMu.Unlock()

	o.wg.Wait()
}

// Run starts the workers and blocks until ctx is done.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.Start(ctx)
	<-ctx.Done()
	o.Stop()
	return nil
}

func (o *Orchestrator) worker(ctx context.Context, workerID int) {
	ctx = logger.WithField(ctx, logger.FieldWorkerID, workerID)
	for {
		id, ok := o.next(ctx)
		if !ok {
			return
		}
		o.process(ctx, id)
	}
}

// next pops the oldest queued id, waiting until one arrives or ctx is done.
func (o *Orchestrator) next(ctx context.Context) (string, bool) {
	for {
		if ctx.Err() != nil {
			return "", false
		}
		o.mu.Lock()
		if len(o.queue) > 0 {
			id := o.queue[0]
			o.queue[0] = ""
			o.queue = o.queue[1:]
			more := len(o.queue) > 0
			o.mu.Unlock()
			if more {
				o.signal()
			}
			return id, true
		}
		o.mu.Unlock()

		select {
		case <-o.wake:
		case <-ctx.Done():
			return "", false
		}
	}
}

func (o *Orchestrator) process(ctx context.Context, id string) {
	ctx = logger.SetJobID(ctx, id)
	start := time.Now()

	job, err := o.store.Get(ctx, id)
	if err != nil {
		logger.CtxError(ctx, "Queued job vanished: %v", err)
		return
	}

	result, genErr := o.generate(ctx, job.Video)

	var final domain.Job
	if genErr != nil {
		final, err = o.store.Fail(context.Background(), id, failureReason(genErr))
	} else {
		final, err = o.store.Complete(context.Background(), id, result)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			logger.CtxError(ctx, "Job state machine violated: %v", err)
			panic(err)
		}
		logger.CtxError(ctx, "Failed to finish job: %v", err)
		return
	}

	entry := logger.With(logger.Fields{logger.FieldStatus: string(final.Status)}).
		WithDuration(time.Since(start).Milliseconds()).
		WithCount(len(final.Steps))
	if genErr != nil {
		entry.Warn(ctx, "Generation failed: %s", final.Error)
	} else {
		entry.Info(ctx, "Generated %d steps using %q", len(final.Steps), final.Template.Title)
	}

	if o.archive != nil {
		if err := o.archive.Save(context.Background(), final); err != nil {
			logger.CtxWarn(ctx, "Failed to archive job: %v", err)
		}
	}
}

// generate runs up to the configured number of attempts.
func (o *Orchestrator) generate(ctx context.Context, video domain.Video) (domain.GenerationResult, error) {
	var lastErr error
	for attempt := 1; attempt <= o.attempts; attempt++ {
		result, err := o.attempt(ctx, video)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < o.attempts {
			logger.CtxWarn(ctx, "Generation attempt %d/%d failed: %v", attempt, o.attempts, err)
		}
	}
	return domain.GenerationResult{}, lastErr
}

func (o *Orchestrator) attempt(ctx context.Context, video domain.Video) (result domain.GenerationResult, err error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewGenerationError("generator panicked", fmt.Errorf("%v", r))
		}
	}()

	result, err = o.gen.Generate(ctx, video)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result, domain.NewGenerationError(fmt.Sprintf("timed out after %s", o.timeout), err)
	}
	return result, err
}

func failureReason(err error) string {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr.Error()
	}
	return "generation failed: " + err.Error()
}
