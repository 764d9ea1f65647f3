package environment

import (
	"context"

	"Crystal3D/internal/logger"

	"github.com/alitto/pond/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Target receives environments. The previously installed source stays owned
// by the resolver binding, which disposes it after a replacement.
type Target interface {
	SetEnvironment(src *Source)
}

// State of a binding's single load attempt.
type State int32

const (
	Pending State = iota
	Loaded
	Failed
	Discarded
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	case Discarded:
		return "discarded"
	}
	return "pending"
}

// Binding ties one Resolve call to its target.
type Binding struct {
	cancelled atomic.Bool
	state     atomic.Int32
	done      chan struct{}
	current   *Source
}

// Cancel makes any later completion discard its source without touching the
// target. Safe from any goroutine.
func (b *Binding) Cancel() {
	b.cancelled.Store(true)
}

func (b *Binding) Cancelled() bool {
	return b.cancelled.Load()
}

// Done is closed once the load attempt has finished and its completion has
// been posted to the mailbox.
func (b *Binding) Done() <-chan struct{} {
	return b.done
}

func (b *Binding) State() State {
	return State(b.state.Load())
}

// Current returns the source last installed into the target.
func (b *Binding) Current() *Source {
	return b.current
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWorkers sets the loading pool size.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithFallbackIntensity sets the hemisphere intensity of the fallback.
func WithFallbackIntensity(i float32) Option {
	return func(r *Resolver) {
		r.fallbackIntensity = i
	}
}

// WithMailbox shares a mailbox between resolvers.
func WithMailbox(m *Mailbox) Option {
	return func(r *Resolver) {
		r.mailbox = m
	}
}

// Resolver installs fallbacks synchronously and loads real environments on a
// worker pool. A nil loader means fallback only.
type Resolver struct {
	loader            Loader
	workers           int
	fallbackIntensity float32
	mailbox           *Mailbox
	pool              pond.Pool
	ctx               context.Context
	stop              context.CancelFunc
}

func NewResolver(loader Loader, opts ...Option) *Resolver {
	r := &Resolver{loader: loader, workers: 2, fallbackIntensity: 1}
	for _, o := range opts {
		o(r)
	}
	if r.mailbox == nil {
		r.mailbox = NewMailbox()
	}
	r.pool = pond.NewPool(r.workers)
	r.ctx, r.stop = context.WithCancel(context.Background())
	return r
}

// Mailbox returns the queue completions are posted to. Drain it on the UI goroutine.
func (r *Resolver) Mailbox() *Mailbox {
	return r.mailbox
}

// Resolve installs a fallback into target immediately and starts exactly one
// load attempt. Failures are logged and leave the fallback in place.
func (r *Resolver) Resolve(target Target) *Binding {
	fb := Fallback(r.fallbackIntensity)
	b := &Binding{done: make(chan struct{}), current: fb}
	target.SetEnvironment(fb)

	if r.loader == nil {
		b.state.Store(int32(Failed))
		close(b.done)
		return b
	}

	r.pool.Submit(func() {
		defer close(b.done)
		src, err := r.loader.Load(r.ctx)
		r.mailbox.Post(func() { r.complete(b, target, src, err) })
	})
	return b
}

func (r *Resolver) complete(b *Binding, target Target, src *Source, err error) {
	if err != nil {
		b.state.Store(int32(Failed))
		logger.Log.Warn("Environment load failed, keeping fallback", zap.Error(err))
		return
	}
	if b.Cancelled() {
		b.state.Store(int32(Discarded))
		src.Dispose()
		logger.Log.Debug("Discarding environment for cancelled binding", zap.String("origin", src.Origin))
		return
	}
	prev := b.current
	target.SetEnvironment(src)
	b.current = src
	b.state.Store(int32(Loaded))
	prev.Dispose()
	logger.Log.Info("Environment loaded", zap.String("origin", src.Origin), zap.Stringer("kind", src.Kind))
}

// Close cancels in-flight loads and waits for the workers. Completions
// already posted still need a final Drain to release their sources.
func (r *Resolver) Close() {
	r.stop()
	r.pool.StopAndWait()
}
