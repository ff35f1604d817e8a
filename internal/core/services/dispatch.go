package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/logger"
)

// Dispatcher invokes routed handlers concurrently with a per-call
// timeout. One slow or failing handler never blocks collection of the
// others' results; the result order always matches the routing order
// regardless of completion order.
type Dispatcher struct {
	mu             sync.RWMutex
	perCallTimeout time.Duration
	maxConcurrency int
}

// NewDispatcher creates a dispatcher. maxConcurrency of zero means
// unbounded up to the number of routed handlers, which is expected to be
// small (tens, not thousands).
func NewDispatcher(perCallTimeout time.Duration, maxConcurrency int) *Dispatcher {
	if perCallTimeout <= 0 {
		perCallTimeout = domain.DefaultPerCallTimeout
	}
	return &Dispatcher{
		perCallTimeout: perCallTimeout,
		maxConcurrency: maxConcurrency,
	}
}

// SetLimits replaces the per-call timeout and concurrency bound. A
// timeout of zero or less restores the default. Dispatches already in
// flight keep the limits they started with.
func (d *Dispatcher) SetLimits(perCallTimeout time.Duration, maxConcurrency int) {
	if perCallTimeout <= 0 {
		perCallTimeout = domain.DefaultPerCallTimeout
	}
	d.mu.Lock()
	d.perCallTimeout = perCallTimeout
	d.maxConcurrency = maxConcurrency
	d.mu.Unlock()
}

// Dispatch fans the question out to the decision's handlers and collects
// one HandlerResult per handler, in decision order. Each invocation runs
// in its own goroutine with its own deadline; when the deadline fires
// the invocation's context is cancelled so in-flight gateway calls stop
// consuming store resources, and the dispatcher moves on without waiting
// for the abandoned handler.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	question string,
	qctx driven.QueryContext,
	handlers []driven.Handler,
) []domain.HandlerResult {
	d.mu.RLock()
	timeout := d.perCallTimeout
	maxConcurrency := d.maxConcurrency
	d.mu.RUnlock()

	logger.Section("Dispatch")
	logger.Debug("dispatching to %d handlers, per-call timeout %s", len(handlers), timeout)

	results := make([]domain.HandlerResult, len(handlers))

	var sem chan struct{}
	if maxConcurrency > 0 {
		sem = make(chan struct{}, maxConcurrency)
	}

	var wg sync.WaitGroup
	for i, h := range handlers {
		wg.Add(1)
		go func(slot int, h driven.Handler) {
			defer wg.Done()
			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					results[slot] = timedOutResult(h, "cancelled before start")
					return
				}
			}
			results[slot] = invoke(ctx, question, qctx, h, timeout)
		}(i, h)
	}
	wg.Wait()

	return results
}

// invoke runs one handler under the per-call timeout. It returns a
// TimedOut result as soon as the deadline fires even if the handler
// goroutine is still unwinding; the cancelled context prevents it from
// doing further work.
func invoke(
	ctx context.Context,
	question string,
	qctx driven.QueryContext,
	h driven.Handler,
	timeout time.Duration,
) domain.HandlerResult {
	name := h.Capabilities().Name
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan domain.HandlerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- domain.HandlerResult{
					HandlerName: name,
					Status:      domain.ResultFailed,
					Diagnostic:  fmt.Sprintf("handler panic: %v", r),
				}
			}
		}()

		res, err := h.Query(callCtx, question, qctx)
		if err != nil {
			done <- domain.HandlerResult{
				HandlerName: name,
				Status:      domain.ResultFailed,
				Diagnostic:  err.Error(),
			}
			return
		}
		if res.HandlerName == "" {
			res.HandlerName = name
		}
		done <- res
	}()

	select {
	case res := <-done:
		// A handler that ran past its own deadline internally still
		// reports as timed out.
		if callCtx.Err() == context.DeadlineExceeded && res.Status != domain.ResultTimedOut {
			logger.Warn("handler %q finished after deadline", name)
			return timedOutResult(h, "completed after deadline")
		}
		logger.Debug("handler %q returned status %s", name, res.Status)
		return res
	case <-callCtx.Done():
		if ctx.Err() != nil {
			logger.Warn("dispatch cancelled while waiting for %q", name)
		} else {
			logger.Warn("handler %q timed out after %s", name, timeout)
		}
		return timedOutResult(h, callCtx.Err().Error())
	}
}

func timedOutResult(h driven.Handler, diagnostic string) domain.HandlerResult {
	return domain.HandlerResult{
		HandlerName: h.Capabilities().Name,
		Status:      domain.ResultTimedOut,
		Diagnostic:  diagnostic,
	}
}
