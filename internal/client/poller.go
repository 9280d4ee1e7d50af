package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/logger"
)

// DefaultPollInterval matches the upload page's refresh rate.
const DefaultPollInterval = 2 * time.Second

// JobFetcher is the subset of Client the poller needs.
type JobFetcher interface {
	Job(ctx context.Context, id string) (domain.JobSnapshot, error)
}

// Poller fetches a job on a fixed interval until it is terminal.
type Poller struct {
	fetcher  JobFetcher
	interval time.Duration
}

// NewPoller creates a poller; a non-positive interval uses DefaultPollInterval.
func NewPoller(fetcher JobFetcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{fetcher: fetcher, interval: interval}
}

// Poll fetches immediately and then every interval, calling onUpdate with
// each snapshot. It returns the terminal snapshot, an error wrapping
// domain.ErrNotFound for unknown jobs, or ctx.Err(). Other fetch errors are
// logged and polling continues.
func (p *Poller) Poll(ctx context.Context, id string, onUpdate func(domain.JobSnapshot)) (domain.JobSnapshot, error) {
	ctx = logger.SetJobID(ctx, id)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		snap, err := p.fetcher.Job(ctx, id)
		switch {
		case err == nil:
			if onUpdate != nil {
				onUpdate(snap)
			}
			if snap.Status.IsTerminal() {
				return snap, nil
			}
		case errors.Is(err, domain.ErrNotFound):
			return domain.JobSnapshot{}, err
		case ctx.Err() != nil:
			return domain.JobSnapshot{}, ctx.Err()
		default:
			logger.CtxWarn(ctx, "Error fetching job: %v", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return domain.JobSnapshot{}, ctx.Err()
		}
	}
}

// Watcher keeps at most one poll running, for the job currently on view.
type Watcher struct {
	poller *Poller

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher around poller.
func NewWatcher(poller *Poller) *Watcher {
	return &Watcher{poller: poller}
}

// Show stops any poll for the previous view, waits for it to exit, then
// polls id in the background. onDone runs once when that poll ends, unless
// it ended because the view changed or the watcher closed. Callbacks run
// on the poll goroutine and must not call Show or Close themselves.
func (w *Watcher) Show(ctx context.Context, id string, onUpdate func(domain.JobSnapshot), onDone func(domain.JobSnapshot, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done

	go func() {
		defer close(done)
		snap, err := w.poller.Poll(ctx, id, onUpdate)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		if onDone != nil {
			onDone(snap, err)
		}
	}()
}

// Close stops the current poll, if any, and waits for it to exit.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *Watcher) stopLocked() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
	w.done = nil
}
