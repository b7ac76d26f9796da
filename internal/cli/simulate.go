package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/tickflow/pkg/tickflow"
	"github.com/randalmurphal/tickflow/pkg/tickflow/clock"
	"github.com/randalmurphal/tickflow/pkg/tickflow/condition"
	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
	"github.com/randalmurphal/tickflow/pkg/tickflow/journal"
	"github.com/randalmurphal/tickflow/pkg/tickflow/nodes"
	"github.com/randalmurphal/tickflow/pkg/tickflow/observability"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
	"github.com/randalmurphal/tickflow/pkg/tickflow/region"
	"github.com/randalmurphal/tickflow/pkg/tickflow/settings"
)

// Setting keys read by the simulate demo.
const (
	keyProducerStep   = "producer.step"
	keyProducerPeriod = "producer.period"
	keyConsumerRate   = "consumer.rate"
	keyThreshold      = "consumer.threshold"
	keyAlert          = "consumer.alert"
	keyResolution     = "clock.resolution"
)

// SimulateOptions holds options for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Steps    int
	Config   string
	Journal  string
	RunID    string
	Parallel bool
	Alert    string
	Trace    string
	OTLP     string
}

// EnvPrefix prefixes environment variables overriding settings:
// TICKFLOW_CONSUMER_RATE overrides consumer.rate.
const EnvPrefix = "TICKFLOW"

// simEvent is one watch event of the demo.
type simEvent struct {
	Step    int64  `json:"step"`
	Elapsed string `json:"elapsed"`
	Kind    string `json:"kind"` // "level" | "alert"
	Value   string `json:"value"`
}

// simulateSummary closes the demo output.
type simulateSummary struct {
	RunID    string `json:"run_id"`
	Steps    int64  `json:"steps"`
	Events   int    `json:"events"`
	Recorded int64  `json:"recorded"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the producer/consumer demo",
		Long: `Run a producer region ticking every step and a slower consumer region.

The producer emits a sawtooth wave. The consumer receives it through a staged
connection, classifies it against a threshold and prints an event every time
the level changes. Settings come from TICKFLOW_* environment variables, then
from --config:

  producer.step       wave increment per producer tick (default 1)
  producer.period     wave period (default 20)
  consumer.rate       consumer tick rate in steps (default 5)
  consumer.threshold  level threshold (default 10)
  consumer.alert      condition on the wave value printing alerts (default none)
  clock.resolution    virtual time per step (default 10ms)

With --journal the consumer records every wave sample it sees into a SQLite
journal at the given path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Steps, "steps", "n", 40, "number of scheduler steps")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "settings file (yaml or json)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal path")
	cmd.Flags().StringVar(&opts.RunID, "run-id", "", "run identifier (default: random)")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", false, "tick due regions concurrently")
	cmd.Flags().StringVar(&opts.Trace, "trace", "none", "span exporter (none|stdout|otlp), stdout writes to stderr")
	cmd.Flags().StringVar(&opts.OTLP, "otlp-endpoint", "localhost:4317", "collector address for --trace otlp")
	cmd.Flags().StringVar(&opts.Alert, "alert", "", "alert condition on the wave value, e.g. \"value >= 18\" (overrides consumer.alert)")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	if opts.Steps <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--steps must be positive, got %d", opts.Steps))
	}
	logger := opts.logger(cmd)

	backend := settings.Chain{settings.FromEnv(EnvPrefix)}
	if opts.Config != "" {
		b, err := settings.FromFile(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot load config", err)
		}
		backend = append(backend, b)
	}
	withLogger := settings.WithLogger(logger)

	step := settings.Resolve(backend, keyProducerStep, 1, withLogger)
	period := settings.Resolve(backend, keyProducerPeriod, 20, withLogger)
	rate := settings.Resolve(backend, keyConsumerRate, 5, withLogger)
	resolution := settings.Resolve(backend, keyResolution, 10*time.Millisecond, withLogger)
	if period <= 0 || rate <= 0 || resolution <= 0 {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("%s, %s and %s must be positive", keyProducerPeriod, keyConsumerRate, keyResolution))
	}

	alertExpr := opts.Alert
	if alertExpr == "" {
		alertExpr = settings.Resolve(backend, keyAlert, "", withLogger)
	}
	var alertCond *condition.Condition
	if alertExpr != "" {
		c, err := condition.Compile(alertExpr)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid alert condition", err)
		}
		alertCond = c
	}

	infraOpts := []tickflow.Option{
		tickflow.WithClock(clock.New(resolution)),
		tickflow.WithLogger(logger),
	}
	if opts.RunID != "" {
		infraOpts = append(infraOpts, tickflow.WithRunID(opts.RunID))
	}
	if opts.Parallel {
		infraOpts = append(infraOpts, tickflow.WithParallelRegions())
	}
	if opts.Trace != observability.ExporterNone {
		tp, err := observability.NewTraceProvider(cmd.Context(), observability.TraceConfig{
			Exporter:     opts.Trace,
			Writer:       cmd.ErrOrStderr(),
			OTLPEndpoint: opts.OTLP,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot set up tracing", err)
		}
		defer func() {
			if err := tp.Shutdown(context.WithoutCancel(cmd.Context())); err != nil {
				logger.Warn("trace shutdown failed", slog.String("error", err.Error()))
			}
		}()
		infraOpts = append(infraOpts, tickflow.WithTracing(tp.SpanManager()))
	}
	infra := tickflow.New(infraOpts...)
	producer := infra.AddRegion("producer", tickflow.FastTick)
	consumer := infra.AddRegion("consumer", tickflow.TickRate(rate))

	// producer: sawtooth wave
	wave := port.NewStateValue(0)
	var n int
	producer.WorkTick().Subscribe(func(connect.Void) {
		n++
		wave.Set((n * step) % period)
	})
	waveOut := region.Bind(producer, wave.Source())

	// consumer: classify and watch
	level := nodes.TransformSetting(func(v, threshold int) string {
		if v >= threshold {
			return "high"
		}
		return "low"
	}, backend, keyThreshold, 10, withLogger)
	watch := nodes.OnChanged[string]()
	infra.Observe(region.PipeState(region.States(waveOut), level).Into(region.Bind(consumer, watch.In())))
	region.Events(region.Bind(consumer, consumer.WorkTick())).To(watch.CheckTick())

	out := newPrinter(opts.Format, cmd.OutOrStdout())
	var (
		events   int
		printErr error
	)
	emit := func(kind, value string) {
		events++
		ev := simEvent{
			Step:    infra.Steps(),
			Elapsed: infra.Clock().Steady().Now().String(),
			Kind:    kind,
			Value:   value,
		}
		text := fmt.Sprintf("step %-4d %-8s %-5s %s", ev.Step, ev.Elapsed, ev.Kind, ev.Value)
		if err := out.print(ev, text); err != nil && printErr == nil {
			printErr = err
		}
	}
	watch.Out().Subscribe(func(l string) { emit("level", l) })

	if alertCond != nil {
		alert := nodes.WatchCondition[int](alertCond)
		infra.Observe(region.States(waveOut).Into(region.Bind(consumer, alert.In())))
		region.Events(region.Bind(consumer, consumer.WorkTick())).To(alert.CheckTick())
		alert.Out().Subscribe(func(v int) { emit("alert", fmt.Sprint(v)) })
	}

	var rec *journal.Recorder[int]
	if opts.Journal != "" {
		store, err := journal.NewSQLiteStore(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot open journal", err)
		}
		defer store.Close()

		rec = journal.NewRecorder[int](store, consumer, "wave",
			journal.WithRunID(infra.RunID()),
			journal.WithClock(infra.Clock()),
			journal.WithRecorderLogger(logger))
		infra.Observe(region.States(waveOut).Into(rec.In()))
		region.Events(region.Bind(consumer, consumer.WorkTick())).Into(rec.SampleTick())
	}

	if err := infra.Run(cmd.Context(), opts.Steps); err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	summary := simulateSummary{RunID: infra.RunID(), Steps: infra.Steps(), Events: events}
	if rec != nil {
		summary.Recorded = rec.Recorded()
		if err := rec.Err(); err != nil {
			printErr = errors.Join(printErr, fmt.Errorf("journal: %w", err))
		}
	}
	if printErr != nil {
		return WrapExitError(ExitFailure, "simulation output incomplete", printErr)
	}
	return out.print(summary, fmt.Sprintf("run %s: %d steps, %d events, %d samples recorded",
		summary.RunID, summary.Steps, summary.Events, summary.Recorded))
}
