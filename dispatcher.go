package tsstat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dispatcher routes requests to registered tests. It is safe for concurrent
// use.
type Dispatcher struct {
	logger *slog.Logger
	limit  int
	reg    *Registry
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// WithConcurrency bounds the number of tests RunAll and CheckAll run at once.
// Values below 1 select GOMAXPROCS.
func WithConcurrency(n int) DispatcherOption {
	return func(d *Dispatcher) { d.limit = n }
}

// WithRegistry replaces the built-in catalog.
func WithRegistry(r *Registry) DispatcherOption {
	return func(d *Dispatcher) { d.reg = r }
}

// NewDispatcher returns a dispatcher over the built-in catalog.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.limit < 1 {
		d.limit = runtime.GOMAXPROCS(0)
	}
	if d.reg == nil {
		d.reg = builtin
	}
	return d
}

// Outcome is the per-test element of RunAll and CheckAll. Verdict is nil
// when no decision was requested or the test failed.
type Outcome struct {
	Test    TestID
	Result  *Result
	Verdict *Verdict
	Err     error
}

// Run executes one test and returns its normalized result.
func (d *Dispatcher) Run(ctx context.Context, c Category, test TestID, in *Input, opts ...Option) (*Result, error) {
	_, res, err := d.run(ctx, c, test, in, opts)
	return res, err
}

// Check executes one test and decides the category's claim at level alpha.
func (d *Dispatcher) Check(ctx context.Context, c Category, test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	_, v, err := d.Evaluate(ctx, c, test, in, alpha, opts...)
	return v, err
}

// Evaluate is Check that also returns the result the verdict was decided on.
func (d *Dispatcher) Evaluate(ctx context.Context, c Category, test TestID, in *Input, alpha float64, opts ...Option) (*Result, Verdict, error) {
	if !(alpha > 0 && alpha < 1) {
		return nil, Verdict{}, invalid(test, InvalidAlpha, "alpha %v outside (0, 1)", alpha)
	}
	e, res, err := d.run(ctx, c, test, in, opts)
	if err != nil {
		return nil, Verdict{}, err
	}
	v, err := Decide(res, alpha, e.Rule)
	if err != nil {
		return res, Verdict{}, err
	}
	return res, v, nil
}

// RunAll executes every test of c in registration order. A failing test
// records its error in its Outcome and does not stop the others.
func (d *Dispatcher) RunAll(ctx context.Context, c Category, in *Input, opts ...Option) ([]Outcome, error) {
	return d.all(ctx, c, in, 0, opts)
}

// CheckAll is RunAll followed by a decision for every successful test.
func (d *Dispatcher) CheckAll(ctx context.Context, c Category, in *Input, alpha float64, opts ...Option) ([]Outcome, error) {
	if !(alpha > 0 && alpha < 1) {
		return nil, invalid("", InvalidAlpha, "alpha %v outside (0, 1)", alpha)
	}
	return d.all(ctx, c, in, alpha, opts)
}

func (d *Dispatcher) all(ctx context.Context, c Category, in *Input, alpha float64, opts []Option) ([]Outcome, error) {
	entries := d.reg.entries(c)
	if len(entries) == 0 {
		return nil, &UnknownTestError{Category: c}
	}
	for _, opt := range opts {
		if slices.Contains(universal, opt.name) {
			continue
		}
		if !slices.ContainsFunc(entries, func(e *Entry) bool { return slices.Contains(e.Accepts, opt.name) }) {
			return nil, invalid("", UnsupportedOption, "no %s test accepts option %q", c, opt.name)
		}
	}

	out := make([]Outcome, len(entries))
	var g errgroup.Group
	g.SetLimit(d.limit)
	for i, e := range entries {
		out[i].Test = e.ID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			own := slices.DeleteFunc(slices.Clone(opts), func(o Option) bool {
				return !slices.Contains(universal, o.name) && !slices.Contains(e.Accepts, o.name)
			})
			_, res, err := d.run(ctx, c, e.ID, in, own)
			out[i].Result, out[i].Err = res, err
			if err != nil || alpha == 0 {
				return nil
			}
			v, err := Decide(res, alpha, e.Rule)
			if err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Verdict = &v
			return nil
		})
	}
	_ = g.Wait()
	return out, ctx.Err()
}

func (d *Dispatcher) run(ctx context.Context, c Category, test TestID, in *Input, opts []Option) (*Entry, *Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	e, err := d.reg.lookup(c, string(test))
	if err != nil {
		return nil, nil, err
	}
	o, err := buildOptions(e, opts)
	if err != nil {
		return nil, nil, err
	}
	valid, err := validate(in, e, o)
	if err != nil {
		return nil, nil, err
	}

	logger := d.logger
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("category", string(c), "test", string(e.ID), "n", valid.Len())
	log.DebugContext(ctx, "dispatching test")
	start := time.Now()

	raw, err := invoke(e, valid, o)
	if err != nil {
		var bad *InvalidInputError
		if errors.As(err, &bad) {
			if bad.Test == "" {
				bad.Test = e.ID
			}
			return nil, nil, bad
		}
		log.WarnContext(ctx, "test failed", "error", err)
		return nil, nil, &ComputationError{Test: e.ID, Err: err}
	}
	res, err := extract(e, raw)
	if err != nil {
		log.WarnContext(ctx, "malformed result", "error", err)
		return nil, nil, err
	}
	res.test, res.category = e.ID, e.Category
	log.DebugContext(ctx, "test completed", "elapsed", time.Since(start))
	return e, res, nil
}

// invoke runs the adapter and turns a panic into an error.
func invoke(e *Entry, in *Input, o *Options) (raw RawResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return e.Invoke(in, o)
}

func extract(e *Entry, raw RawResult) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &MalformedResultError{Test: e.ID, Detail: fmt.Sprint(r)}
		}
	}()
	res, err = e.Extract(raw)
	if err != nil {
		var m *MalformedResultError
		if errors.As(err, &m) {
			if m.Test == "" {
				m.Test = e.ID
			}
			return nil, m
		}
		return nil, &MalformedResultError{Test: e.ID, Detail: err.Error()}
	}
	if res == nil {
		return nil, &MalformedResultError{Test: e.ID, Detail: "no result"}
	}
	return res, nil
}

// malformed reports an unexpected raw shape.
func malformed(want string, raw RawResult) error {
	return &MalformedResultError{Detail: fmt.Sprintf("expected %s, got %T", want, raw)}
}

var defaultDispatcher = NewDispatcher()

func runDefault(c Category, test TestID, in *Input, opts []Option) (*Result, error) {
	return defaultDispatcher.Run(context.Background(), c, test, in, opts...)
}

func checkDefault(c Category, test TestID, in *Input, alpha float64, opts []Option) (Verdict, error) {
	return defaultDispatcher.Check(context.Background(), c, test, in, alpha, opts...)
}

// isDefault answers a category's claim with its default test at DefaultAlpha
// unless Using or WithAlpha say otherwise.
func isDefault(c Category, in *Input, opts []Option) (bool, error) {
	test, alpha := c.Default(), DefaultAlpha
	for _, o := range opts {
		switch o.name {
		case "test":
			v, err := optionTable["test"].coerce(o.value)
			if err != nil {
				return false, invalid("", InvalidOption, "test: %v", err)
			}
			test = TestID(v.(string))
		case "alpha":
			v, err := optionTable["alpha"].coerce(o.value)
			if err != nil {
				return false, invalid("", InvalidAlpha, "alpha: %v", err)
			}
			alpha = v.(float64)
		}
	}
	v, err := checkDefault(c, test, in, alpha, opts)
	if err != nil {
		return false, err
	}
	return v.Positive, nil
}
