package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// DefaultTimeout bounds a single notification when none is configured.
const DefaultTimeout = 2 * time.Minute

// ErrDispatcherClosed is returned by Dispatch after Close has been called.
var ErrDispatcherClosed = errors.New("notify: dispatcher closed")

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout bounds each notification. Zero or negative values disable the bound.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger interfaces.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithResultHook registers fn to observe the outcome of every notification.
func WithResultHook(fn func(interfaces.PublishEvent, error)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onResult = fn
	}
}

// Dispatcher runs notifications in the background, detached from the caller.
// Failures are logged and otherwise dropped.
type Dispatcher struct {
	notifier interfaces.PublishNotifier
	timeout  time.Duration
	logger   interfaces.Logger
	onResult func(interfaces.PublishEvent, error)

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher wraps notifier. A nil notifier makes every dispatch a no-op.
func NewDispatcher(notifier interfaces.PublishNotifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		timeout:  DefaultTimeout,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Dispatch schedules event and returns immediately.
func (d *Dispatcher) Dispatch(event interfaces.PublishEvent) error {
	if d == nil || d.notifier == nil {
		return nil
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(event)
	return nil
}

func (d *Dispatcher) run(event interfaces.PublishEvent) {
	defer d.wg.Done()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger := logging.WithFields(d.logger, map[string]any{
		"publish_id": event.ID,
		"slug":       event.Slug,
	})

	err := d.notify(ctx, event)
	if err != nil {
		logger.Error("notify.failed", "error", err, "files", len(event.Files))
	} else {
		logger.Debug("notify.delivered", "files", len(event.Files))
	}
	if d.onResult != nil {
		d.onResult(event, err)
	}
}

func (d *Dispatcher) notify(ctx context.Context, event interfaces.PublishEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("notify: notifier panicked")
			d.logger.Error("notify.panic", "recovered", r)
		}
	}()
	return d.notifier.Notify(ctx, event)
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new notifications and drains the ones in flight.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return d.Wait(ctx)
}
