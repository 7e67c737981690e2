package profiler

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/jonwraymond/pyrolink/observe"
)

// defaultPeriod is the length of one collection cycle.
const defaultPeriod = 60 * time.Second

// Exporter uploads one collected profile. Implementations receive the
// serialized profile buffer and the collection interval in nanoseconds,
// and return the profile unchanged on success.
type Exporter interface {
	Export(ctx context.Context, profile []byte, startTimeNS, endTimeNS int64) ([]byte, error)
}

// Sampler collects one serialized profile over the given period. Sample
// blocks for the period (or until ctx is canceled) and returns the
// profile buffer pre-compression: the export pipeline owns compression.
type Sampler interface {
	Sample(ctx context.Context, period time.Duration) ([]byte, error)
}

// Config holds the profiler configuration.
type Config struct {
	// Period is the length of one collection cycle. Default: 60s.
	Period time.Duration

	// EnableMemoryProfiling controls whether the runtime samples
	// allocations during collection. CPU sampling is always on; memory is
	// on demand.
	EnableMemoryProfiling bool

	// Logger receives per-cycle diagnostics. If nil, logging is disabled.
	Logger observe.Logger
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithExporter injects the exporter used for every collection cycle.
func WithExporter(e Exporter) Option {
	return func(p *Profiler) { p.exporter = e }
}

// WithSampler replaces the default CPU sampler.
func WithSampler(s Sampler) Option {
	return func(p *Profiler) { p.sampler = s }
}

// Profiler periodically collects and exports profiles. Safe for use from
// multiple goroutines; collection itself runs on a single background
// goroutine so there is at most one in-flight export call.
type Profiler struct {
	cfg      Config
	exporter Exporter
	sampler  Sampler
	logger   observe.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// New validates cfg and builds a Profiler. An exporter must be injected
// with WithExporter before the profiler can be constructed; there is no
// default.
func New(cfg Config, opts ...Option) (*Profiler, error) {
	if cfg.Period <= 0 {
		cfg.Period = defaultPeriod
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	p := &Profiler{
		cfg:     cfg,
		sampler: NewCPUSampler(),
		logger:  logger.WithComponent("profiler"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.exporter == nil {
		return nil, ErrMissingExporter
	}
	return p, nil
}

// Start launches the collection loop. It must be called exactly once,
// before any export cycle is expected; calling it again returns
// ErrAlreadyStarted.
func (p *Profiler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	if !p.cfg.EnableMemoryProfiling {
		// Allocation sampling off for the whole process: the toggle is a
		// startup decision, not a per-cycle one.
		runtime.MemProfileRate = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx)

	p.logger.Info(ctx, "profiler started",
		observe.Field{Key: "period", Value: p.cfg.Period.String()},
		observe.Field{Key: "memory_profiling", Value: p.cfg.EnableMemoryProfiling})
	return nil
}

// Stop cancels the collection loop and waits for the current cycle to
// wind down or ctx to expire.
func (p *Profiler) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastExportError returns the outcome of the most recent completed export
// cycle: nil after a successful upload, the surfaced error otherwise.
func (p *Profiler) LastExportError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Profiler) setLastErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// run executes collection cycles until ctx is canceled. Each cycle blocks
// for the sampling period, then uploads synchronously: cycles never
// overlap.
func (p *Profiler) run(ctx context.Context) {
	defer close(p.done)

	for {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		profile, err := p.sampler.Sample(ctx, p.cfg.Period)
		end := time.Now()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error(ctx, "profile collection failed",
				observe.Field{Key: "error", Value: err.Error()})
			p.setLastErr(err)
			continue
		}

		_, err = p.exporter.Export(ctx, profile, start.UnixNano(), end.UnixNano())
		p.setLastErr(err)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Per-cycle failure: log and drop, the next cycle is unaffected.
			p.logger.Error(ctx, "profile export failed",
				observe.Field{Key: "error", Value: err.Error()})
		}
	}
}
