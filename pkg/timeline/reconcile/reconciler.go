package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"formation-hq/timeline/pkg/telemetry/logging"
	"formation-hq/timeline/pkg/timeline"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Operation names used in outcomes, errors and metrics.
const (
	OpCreate = "create"
	OpAttach = "attach"
	OpEdit   = "edit"
	OpDetach = "detach"
	OpDelete = "delete"
)

// modeRelease labels Release runs in logs and metrics.
const modeRelease Mode = "release"

// DefaultConcurrency bounds the number of operation chains in flight.
const DefaultConcurrency = 8

// Recorder receives reconcile metrics.
type Recorder interface {
	RecordOperation(op, result string)
	ObserveReconcile(mode, result string, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, string)                 {}
func (noopRecorder) ObserveReconcile(string, string, time.Duration) {}

// Config controls how plans are applied.
type Config struct {
	// Concurrency bounds how many operation chains run at once.
	// Zero means DefaultConcurrency.
	Concurrency int

	// NameSuffix appends "_<volume>" to the names of created policies.
	NameSuffix bool
}

// Request describes one reconcile run.
type Request struct {
	VolumeID timeline.VolumeID
	Mode     Mode

	// Current is the volume's attached policies. In edit mode a nil
	// Current is fetched from the store.
	Current []timeline.RetentionPolicy

	Desired []timeline.DesiredPolicy
}

// Outcome is the result of one store call.
type Outcome struct {
	Op       string
	PolicyID timeline.PolicyID
	Name     string
	Err      error
}

// Result describes a finished run. Outcomes are in completion order.
type Result struct {
	RunID    string
	VolumeID timeline.VolumeID
	Mode     Mode
	Plan     Plan
	Outcomes []Outcome
	Duration time.Duration
}

// Err joins the failures of the run, one *timeline.OperationError each.
// It is nil when every operation succeeded.
func (r Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, &timeline.OperationError{
				Op:       o.Op,
				PolicyID: o.PolicyID,
				Name:     o.Name,
				VolumeID: r.VolumeID,
				Cause:    o.Err,
			})
		}
	}
	return errors.Join(errs...)
}

// Failed returns the outcomes that carry an error.
func (r Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Reconciler applies policy plans to volumes through a store.
type Reconciler struct {
	store    timeline.Store
	config   Config
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Reconciler) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Reconciler over store.
func New(store timeline.Store, cfg Config, opts ...Option) *Reconciler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	r := &Reconciler{
		store:    store,
		config:   cfg,
		recorder: noopRecorder{},
		logger:   slog.Default().With("component", "timeline.reconcile"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan resolves the current policies for req and returns the plan a
// Reconcile call would execute, without issuing any write.
func (r *Reconciler) Plan(ctx context.Context, req Request) (Plan, error) {
	current, err := r.current(ctx, req)
	if err != nil {
		return Plan{}, err
	}
	return PlanFor(req.Mode, current, req.Desired), nil
}

// Reconcile converges the volume's attached policies to req.Desired.
//
// The returned error covers only an invalid request or a failure to read
// the current policies. Failed store operations are reported in the
// Result and through Result.Err; they never stop sibling operations.
// Once started, operations run to completion even if ctx is cancelled.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (Result, error) {
	if req.VolumeID == "" {
		return Result{}, errors.New("reconcile: volume id is required")
	}
	if req.Mode == "" {
		req.Mode = ModeEdit
	}
	if _, err := ParseMode(string(req.Mode)); err != nil {
		return Result{}, err
	}

	plan, err := r.Plan(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return r.execute(ctx, req.VolumeID, req.Mode, plan), nil
}

// Release detaches and deletes every policy attached to volume, as when
// the volume itself is removed.
func (r *Reconciler) Release(ctx context.Context, volume timeline.VolumeID) (Result, error) {
	if volume == "" {
		return Result{}, errors.New("release: volume id is required")
	}
	current, err := r.store.ListAttached(ctx, volume)
	if err != nil {
		return Result{}, fmt.Errorf("list policies of volume %s: %w", volume, err)
	}
	return r.execute(ctx, volume, modeRelease, NewPlan(current, nil)), nil
}

func (r *Reconciler) current(ctx context.Context, req Request) ([]timeline.RetentionPolicy, error) {
	if req.Mode != ModeEdit && req.Mode != "" {
		return nil, nil
	}
	if req.Current != nil {
		return req.Current, nil
	}
	current, err := r.store.ListAttached(ctx, req.VolumeID)
	if err != nil {
		return nil, fmt.Errorf("list policies of volume %s: %w", req.VolumeID, err)
	}
	return current, nil
}

// run collects the outcomes of one execution.
type run struct {
	volume   timeline.VolumeID
	recorder Recorder
	logger   *slog.Logger

	mu       sync.Mutex
	outcomes []Outcome
}

func (rn *run) record(ctx context.Context, op string, p timeline.RetentionPolicy, err error) {
	result := "success"
	if err != nil {
		result = "error"
		rn.logger.WarnContext(ctx, "policy operation failed",
			"op", op, "policy_id", int64(p.ID), "name", p.Name, "error", err)
	} else {
		rn.logger.DebugContext(ctx, "policy operation done",
			"op", op, "policy_id", int64(p.ID), "name", p.Name)
	}
	rn.recorder.RecordOperation(op, result)

	rn.mu.Lock()
	rn.outcomes = append(rn.outcomes, Outcome{Op: op, PolicyID: p.ID, Name: p.Name, Err: err})
	rn.mu.Unlock()
}

func (r *Reconciler) execute(ctx context.Context, volume timeline.VolumeID, mode Mode, plan Plan) Result {
	start := time.Now()
	runID := uuid.NewString()

	ctx = context.WithoutCancel(ctx)
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithVolume(ctx, string(volume))

	rn := &run{volume: volume, recorder: r.recorder, logger: r.logger}

	r.logger.InfoContext(ctx, "reconcile started",
		"mode", string(mode),
		"deletes", len(plan.Deletes),
		"edits", len(plan.Edits),
		"creates", len(plan.Creates),
		"skipped", len(plan.Skipped),
	)

	var g errgroup.Group
	g.SetLimit(r.config.Concurrency)

	for _, p := range plan.Deletes {
		g.Go(func() error {
			r.detachThenDelete(ctx, rn, p)
			return nil
		})
	}
	for _, p := range plan.Edits {
		g.Go(func() error {
			rn.record(ctx, OpEdit, p, r.store.Edit(ctx, p))
			return nil
		})
	}
	for _, p := range plan.Creates {
		g.Go(func() error {
			r.createThenAttach(ctx, rn, p)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		RunID:    runID,
		VolumeID: volume,
		Mode:     mode,
		Plan:     plan,
		Outcomes: rn.outcomes,
		Duration: time.Since(start),
	}

	result := "success"
	if failed := len(res.Failed()); failed > 0 {
		result = "error"
		r.logger.WarnContext(ctx, "reconcile finished with failures",
			"operations", len(res.Outcomes), "failed", failed, "duration", res.Duration)
	} else {
		r.logger.InfoContext(ctx, "reconcile finished",
			"operations", len(res.Outcomes), "duration", res.Duration)
	}
	r.recorder.ObserveReconcile(string(mode), result, res.Duration)

	return res
}

// detachThenDelete never deletes a policy whose detach failed.
func (r *Reconciler) detachThenDelete(ctx context.Context, rn *run, p timeline.RetentionPolicy) {
	err := r.store.Detach(ctx, p.ID, rn.volume)
	rn.record(ctx, OpDetach, p, err)
	if err != nil {
		return
	}
	rn.record(ctx, OpDelete, p, r.store.Delete(ctx, p.ID))
}

// createThenAttach attaches with the id the store assigned.
func (r *Reconciler) createThenAttach(ctx context.Context, rn *run, p timeline.RetentionPolicy) {
	p.ID = timeline.NoID
	p.Name = r.policyName(p.Name, rn.volume)

	created, err := r.store.Create(ctx, p)
	if err != nil {
		rn.record(ctx, OpCreate, p, err)
		return
	}
	rn.record(ctx, OpCreate, created, nil)
	rn.record(ctx, OpAttach, created, r.store.Attach(ctx, created.ID, rn.volume))
}

func (r *Reconciler) policyName(name string, volume timeline.VolumeID) string {
	suffix := "_" + string(volume)
	if !r.config.NameSuffix || strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}
