package tickflow

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/tickflow/pkg/tickflow/buffer"
	"github.com/randalmurphal/tickflow/pkg/tickflow/clock"
	"github.com/randalmurphal/tickflow/pkg/tickflow/observability"
	"github.com/randalmurphal/tickflow/pkg/tickflow/region"
)

// TickRate is the period of a region in clock ticks: a region with rate n
// cycles on every n-th advance of the clock.
type TickRate int64

// Common tick rates.
const (
	FastTick   TickRate = 1
	MediumTick TickRate = 10
	SlowTick   TickRate = 100
)

type scheduled struct {
	region *region.Region
	rate   TickRate
}

type observed struct {
	conn *region.Connection
	from string
	to   string
	last buffer.Stats
}

// Infrastructure owns the regions of a graph and drives them from a virtual
// clock. Each step advances the clock by one tick, then runs the switch
// phase of every due region, then the work phase of every due region.
//
// Regions created by AddRegion live as long as the Infrastructure, so the
// ports bound to them stay valid.
type Infrastructure struct {
	cfg infraConfig

	mu          sync.Mutex
	regions     []scheduled
	connections []*observed
	steps       int64
}

// New creates an Infrastructure with no regions.
func New(opts ...Option) *Infrastructure {
	cfg := defaultInfraConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = clock.New(clock.DefaultResolution)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.New().String()
	}
	cfg.logger = cfg.logger.With(slog.String("run_id", cfg.runID))
	return &Infrastructure{cfg: cfg}
}

// AddRegion creates a region cycling every rate clock ticks.
// Panics if rate is not positive.
func (inf *Infrastructure) AddRegion(name string, rate TickRate, opts ...region.Option) *region.Region {
	if rate <= 0 {
		panic(fmt.Sprintf("tickflow: tick rate of region %q must be positive", name))
	}
	opts = append([]region.Option{region.WithLogger(inf.cfg.logger)}, opts...)
	r := region.New(name, opts...)

	inf.mu.Lock()
	inf.regions = append(inf.regions, scheduled{region: r, rate: rate})
	inf.mu.Unlock()
	return r
}

// Regions returns the regions in the order they were added.
func (inf *Infrastructure) Regions() []*region.Region {
	inf.mu.Lock()
	defer inf.mu.Unlock()
	out := make([]*region.Region, len(inf.regions))
	for i, s := range inf.regions {
		out[i] = s.region
	}
	return out
}

// Observe reports the buffer of a staged connection through the metrics
// recorder after every step. Direct connections are ignored.
func (inf *Infrastructure) Observe(c *region.Connection) {
	if c == nil || c.Buffer() == nil {
		return
	}
	o := &observed{conn: c}
	if r := c.SourceRegion(); r != nil {
		o.from = r.Name()
	}
	if r := c.SinkRegion(); r != nil {
		o.to = r.Name()
	}
	inf.mu.Lock()
	inf.connections = append(inf.connections, o)
	inf.mu.Unlock()
}

// Clock returns the virtual clock.
func (inf *Infrastructure) Clock() *clock.Master { return inf.cfg.clock }

// RunID returns the run identifier.
func (inf *Infrastructure) RunID() string { return inf.cfg.runID }

// Logger returns the scheduler's logger.
func (inf *Infrastructure) Logger() *slog.Logger { return inf.cfg.logger }

// Steps returns the number of completed steps.
func (inf *Infrastructure) Steps() int64 {
	inf.mu.Lock()
	defer inf.mu.Unlock()
	return inf.steps
}

// Run performs steps scheduler steps, stopping at the first error.
func (inf *Infrastructure) Run(ctx context.Context, steps int) error {
	if ctx == nil {
		return ErrNilContext
	}
	if steps <= 0 {
		return ErrNoSteps
	}

	observability.LogRunStart(inf.cfg.logger, steps)
	done := observability.TimedOperation()

	completed := 0
	var err error
	for ; completed < steps; completed++ {
		if err = inf.Step(ctx); err != nil {
			break
		}
	}
	observability.LogRunComplete(inf.cfg.logger, completed, done(), err)
	return err
}

// Step advances the clock by one tick and cycles every region whose rate
// divides the new tick count. The switch phase of all due regions
// completes before the first work phase starts.
//
// A panic inside a tick is returned as *PanicError. The other due regions
// still finish that phase, but no work phase runs after a failed switch
// phase. Step must not be called concurrently with itself.
func (inf *Infrastructure) Step(ctx context.Context) (stepErr error) {
	if ctx == nil {
		return ErrNilContext
	}

	inf.mu.Lock()
	step := inf.steps + 1
	if err := ctx.Err(); err != nil {
		inf.mu.Unlock()
		return &CancellationError{Step: step - 1, Cause: err}
	}
	inf.cfg.clock.Advance()
	ticks := inf.cfg.clock.Ticks()
	due := make([]*region.Region, 0, len(inf.regions))
	for _, s := range inf.regions {
		if ticks%int64(s.rate) == 0 {
			due = append(due, s.region)
		}
	}
	connections := inf.connections
	inf.steps = step
	inf.mu.Unlock()

	start := time.Now()
	observability.LogCycleStart(inf.cfg.logger, step, ticks, len(due))

	spanCtx := ctx
	if inf.cfg.tracing {
		spans := inf.cfg.spans
		sctx, cycle := spans.StartCycleSpan(ctx, inf.cfg.runID, step)
		spanCtx = sctx
		spans.AddSpanEvent(sctx, "regions.due", attribute.Int("count", len(due)))
		defer func() { spans.EndSpanWithError(cycle, stepErr) }()
	}

	defer func() {
		d := time.Since(start)
		inf.cfg.metrics.RecordCycle(ctx, len(due), d, stepErr)
		if stepErr == nil {
			observability.LogCycleComplete(inf.cfg.logger, step, len(due), float64(d.Microseconds())/1000)
		}
	}()

	if err := inf.phase(spanCtx, step, region.PhaseSwitch, due); err != nil {
		return err
	}
	if err := inf.phase(spanCtx, step, region.PhaseWork, due); err != nil {
		return err
	}

	for _, o := range connections {
		stats := o.conn.Buffer().Stats()
		inf.cfg.metrics.RecordBuffer(ctx, o.from, o.to,
			stats.Items-o.last.Items, stats.Deliveries-o.last.Deliveries)
		o.last = stats
	}
	return nil
}

// phase ticks every region in due and waits for all of them. The first
// failure in region order is returned.
func (inf *Infrastructure) phase(ctx context.Context, step int64, p region.Phase, due []*region.Region) error {
	errs := make([]error, len(due))
	if inf.cfg.parallel && len(due) > 1 {
		var wg sync.WaitGroup
		for i, r := range due {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = inf.tick(ctx, step, p, r)
			}()
		}
		wg.Wait()
	} else {
		for i, r := range due {
			errs[i] = inf.tick(ctx, step, p, r)
		}
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (inf *Infrastructure) tick(ctx context.Context, step int64, p region.Phase, r *region.Region) (err error) {
	name := p.String()
	if inf.cfg.tracing {
		spans := inf.cfg.spans
		_, span := spans.StartPhaseSpan(ctx, r.Name(), name)
		defer func() { spans.EndSpanWithError(span, err) }()
	}

	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{
				Region: r.Name(),
				Phase:  name,
				Step:   step,
				Value:  v,
				Stack:  string(debug.Stack()),
			}
			observability.LogTickError(inf.cfg.logger, r.Name(), name, err)
		}
		inf.cfg.metrics.RecordPhase(ctx, r.Name(), name, time.Since(start))
	}()

	if p == region.PhaseSwitch {
		r.Switch()
	} else {
		r.Work()
	}
	return nil
}
