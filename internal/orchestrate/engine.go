// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/diff"
	"github.com/jeranaias/redraft/internal/model"
	"github.com/jeranaias/redraft/internal/parse"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultUpdateInterval throttles partial-update delivery to roughly 15 Hz.
const DefaultUpdateInterval = 66 * time.Millisecond

// ErrNoTargets indicates an invocation without any model to dispatch to.
var ErrNoTargets = errors.New("no targets to execute")

// =============================================================================
// TYPES
// =============================================================================

// Streamer is the provider-side contract the engine dispatches against.
// *provider.Client satisfies it.
type Streamer interface {
	Stream(ctx context.Context, modelID string, msgs []model.ChatMessage, kind action.OutputKind, onText func(cumulative string)) (string, error)
}

// Target pairs a model with the provider client that serves it.
type Target struct {
	Model  model.ModelConfig
	Client Streamer
}

// Request is one orchestrated invocation: the user input fanned out to
// every target concurrently.
type Request struct {
	Text           string
	Images         []model.ImageRef
	Action         action.Config
	TargetLanguage string
	Targets        []Target
}

// UpdateFunc receives throttled partial updates. Each delivery replaces
// the prior partial value for that model.
type UpdateFunc func(modelID string, u model.StreamingUpdate)

// ResultFunc receives each model's terminal result as it completes.
type ResultFunc func(r model.ExecutionResult)

// Options configures an Engine.
type Options struct {
	// UpdateInterval gates partial-update delivery per model.
	// Zero means DefaultUpdateInterval.
	UpdateInterval time.Duration
	// Logger receives lifecycle and failure logs. Nil uses the standard logger.
	Logger *logrus.Entry
	// OnUpdate is invoked with throttled partial updates.
	OnUpdate UpdateFunc
	// OnResult is invoked once per completed (non-cancelled) model.
	OnResult ResultFunc
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine fans a request out to every target concurrently and owns the
// supersession point: starting a new Execute cancels the live one and
// waits for its workers to acknowledge before dispatching.
//
// Callbacks are gated on request liveness under the engine mutex, so a
// superseded request emits nothing after its successor starts.
type Engine struct {
	mu   sync.Mutex
	live *liveRequest

	interval time.Duration
	log      *logrus.Entry
	onUpdate UpdateFunc
	onResult ResultFunc
}

// liveRequest tracks the in-flight invocation.
type liveRequest struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an Engine.
func New(opts Options) *Engine {
	interval := opts.UpdateInterval
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		interval: interval,
		log:      log,
		onUpdate: opts.OnUpdate,
		onResult: opts.OnResult,
	}
}

// Execute runs one invocation and blocks until every worker has finished
// or the request is superseded or cancelled.
//
// The returned slice follows the request's target order and contains one
// entry per target that reached a terminal outcome; cancelled targets
// leave no entry. The error is non-nil only for an empty target list or
// when the invocation was cancelled before completion.
func (e *Engine) Execute(ctx context.Context, req Request) ([]model.ExecutionResult, error) {
	if len(req.Targets) == 0 {
		return nil, ErrNoTargets
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lr := &liveRequest{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Supersession: install the new request and evict the previous one in
	// a single critical section, so concurrent Execute calls cannot both
	// survive the window. The evicted request's callbacks stop immediately;
	// its workers are then cancelled and awaited before dispatch.
	e.mu.Lock()
	prev := e.live
	e.live = lr
	e.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	log := e.log.WithFields(logrus.Fields{
		"request_id": lr.id,
		"action":     req.Action.ID,
	})
	log.WithField("targets", len(req.Targets)).Info("dispatching request")

	msgs := action.BuildMessages(req.Action, req.Text, action.ResolveLanguage(req.TargetLanguage), req.Images)

	results := make([]model.ExecutionResult, len(req.Targets))
	filled := make([]bool, len(req.Targets))

	var wg sync.WaitGroup
	for i, target := range req.Targets {
		wg.Add(1)
		go func(slot int, t Target) {
			defer wg.Done()
			r, ok := e.runTarget(ctx, lr, req, t, msgs, log)
			if ok {
				// Each slot has a single writer; reads happen after Wait.
				results[slot] = r
				filled[slot] = true
			}
		}(i, target)
	}

	go func() {
		wg.Wait()
		close(lr.done)
	}()

	<-lr.done

	// Release the liveness slot if this request still owns it.
	e.mu.Lock()
	if e.live == lr {
		e.live = nil
	}
	e.mu.Unlock()

	out := make([]model.ExecutionResult, 0, len(req.Targets))
	for i := range results {
		if filled[i] {
			out = append(out, results[i])
		}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// Cancel aborts the live request, if any, without starting a new one.
func (e *Engine) Cancel() {
	e.mu.Lock()
	lr := e.live
	e.live = nil
	e.mu.Unlock()

	if lr != nil {
		lr.cancel()
		<-lr.done
	}
}

// runTarget drives one model to its terminal outcome. ok is false when
// the unit was cancelled and produced no result.
func (e *Engine) runTarget(ctx context.Context, lr *liveRequest, req Request, t Target, msgs []model.ChatMessage, log *logrus.Entry) (model.ExecutionResult, bool) {
	modelID := t.Model.ID
	mlog := log.WithField("model", modelID)
	kind := req.Action.Output
	parser := parse.ForKind(kind)
	limiter := rate.NewLimiter(rate.Every(e.interval), 1)

	var latest model.StreamingUpdate
	pending := false

	start := time.Now()
	text, err := t.Client.Stream(ctx, modelID, msgs, kind, func(cumulative string) {
		u, ok := parser.Snapshot(cumulative)
		if !ok {
			return
		}
		// Coalesce: a suppressed snapshot is replaced by the next one and
		// delivered on the next allowance or with the final flush.
		latest = u
		pending = true
		if limiter.Allow() {
			e.emitUpdate(lr, modelID, u)
			pending = false
		}
	})
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			mlog.Debug("unit cancelled")
			return model.ExecutionResult{}, false
		}
		mlog.WithError(err).Error("unit failed")
		r := model.ExecutionResult{ModelID: modelID, Err: err, Duration: elapsed}
		e.emitResult(lr, r)
		return r, true
	}

	// Final flush bypasses the throttle so the last snapshot always lands.
	if pending {
		e.emitUpdate(lr, modelID, latest)
	}

	final := parser.Finalize(text)
	r := model.ExecutionResult{
		ModelID:           modelID,
		Text:              final.Text,
		Duration:          elapsed,
		DiffSource:        final.DiffSource,
		SupplementalTexts: final.Supplemental,
		SentencePairs:     final.Pairs,
	}

	// O(n·m) diff work stays on the worker goroutine, off the delivery path.
	if kind.WantsDiff() && final.DiffSource != "" {
		d := diff.Build(req.Text, final.DiffSource)
		r.Diff = &d
	}

	mlog.WithField("duration", elapsed).Info("unit completed")
	e.emitResult(lr, r)
	return r, true
}

// emitUpdate delivers a partial update iff the request is still live.
func (e *Engine) emitUpdate(lr *liveRequest, modelID string, u model.StreamingUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.live != lr || e.onUpdate == nil {
		return
	}
	e.onUpdate(modelID, u)
}

// emitResult delivers a terminal result iff the request is still live.
func (e *Engine) emitResult(lr *liveRequest, r model.ExecutionResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.live != lr || e.onResult == nil {
		return
	}
	e.onResult(r)
}
