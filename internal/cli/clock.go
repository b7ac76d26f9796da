package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/tickflow/pkg/tickflow/clock"
)

// ClockOptions holds options for the clock command.
type ClockOptions struct {
	*RootOptions
	Ticks      int64
	Resolution time.Duration
	Epoch      string
	Every      int64
}

// clockReading is one line of clock output.
type clockReading struct {
	Tick   int64     `json:"tick"`
	Steady string    `json:"steady"`
	System time.Time `json:"system"`
	Unix   int64     `json:"unix"`
}

// NewClockCommand creates the clock command.
func NewClockCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClockOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Print virtual time for a number of ticks",
		Long: `Advance a virtual clock tick by tick and print its steady and system time.

The steady time is the elapsed virtual time. The system time is the epoch
plus the elapsed virtual time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClock(opts, cmd)
		},
	}

	cmd.Flags().Int64VarP(&opts.Ticks, "ticks", "n", 10, "number of ticks to advance")
	cmd.Flags().DurationVarP(&opts.Resolution, "resolution", "r", 10*time.Millisecond, "virtual time per tick")
	cmd.Flags().StringVar(&opts.Epoch, "epoch", "", "system time at tick zero (RFC 3339, default Unix epoch)")
	cmd.Flags().Int64Var(&opts.Every, "every", 1, "print every n-th tick")

	return cmd
}

func runClock(opts *ClockOptions, cmd *cobra.Command) error {
	if opts.Ticks < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--ticks must not be negative, got %d", opts.Ticks))
	}
	if opts.Resolution <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--resolution must be positive, got %s", opts.Resolution))
	}
	if opts.Every <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--every must be positive, got %d", opts.Every))
	}

	var clockOpts []clock.Option
	if opts.Epoch != "" {
		epoch, err := time.Parse(time.RFC3339, opts.Epoch)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --epoch", err)
		}
		clockOpts = append(clockOpts, clock.WithEpoch(epoch))
	}
	master := clock.New(opts.Resolution, clockOpts...)
	steady, system := master.Steady(), master.System()

	out := newPrinter(opts.Format, cmd.OutOrStdout())
	for tick := int64(0); tick <= opts.Ticks; tick++ {
		if tick > 0 {
			master.Advance()
		}
		if tick%opts.Every != 0 && tick != opts.Ticks {
			continue
		}
		now := system.Now()
		r := clockReading{
			Tick:   master.Ticks(),
			Steady: steady.Now().String(),
			System: now,
			Unix:   system.ToUnix(now),
		}
		text := fmt.Sprintf("tick %-6d %-10s %s", r.Tick, r.Steady, r.System.Format(time.RFC3339Nano))
		if err := out.print(r, text); err != nil {
			return err
		}
	}
	return nil
}
