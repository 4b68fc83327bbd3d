// Package main is the passlock command line. It runs the passcode device
// behind a terminal UI or a line console, and replays scripted scenarios.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/PassLock/internal/config"
	"github.com/atinyakov/PassLock/internal/console"
	"github.com/atinyakov/PassLock/internal/device"
	"github.com/atinyakov/PassLock/internal/logger"
	"github.com/atinyakov/PassLock/internal/panel"
	"github.com/atinyakov/PassLock/internal/scenario"
	"github.com/atinyakov/PassLock/internal/tui"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passlock",
		Short: "PassLock simulates a four digit passcode lock.",
		Long: `PassLock runs the control loop of a keypad passcode lock: a four digit
display, a mode button cycling check, set and remove, a reset button and a
status indicator. Passcodes live in memory only and are cleared on reset.`,
		SilenceUsage: true,
	}
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newConsoleCmd())
	cmd.AddCommand(newReplayCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setup loads the options and builds the logger. Log output goes to
// log.file when set, otherwise to stderr unless quiet is true.
func setup(cmd *cobra.Command, quiet bool) (*config.Options, *logger.Logger, error) {
	opts, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	log := logger.New()
	switch {
	case opts.Log.File != "":
		err = log.Init(opts.Log.Level, opts.Log.File)
	case !quiet:
		err = log.Init(opts.Log.Level)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return opts, log, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the device behind the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stderr would draw over the UI, so only a log file is honoured.
			opts, log, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = log.Log.Sync() }()

			cfg := opts.DeviceConfig()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)

			p := panel.New()
			dev := device.New(cfg, p, p, p, log.Log)

			done := make(chan error, 1)
			go func() { done <- dev.Run(ctx, device.TimerSleeper{}) }()

			uiErr := tui.Run(p, opts.Timing.Flash)
			cancel()
			if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
				log.Log.Error("device loop failed", zap.Error(err))
			}
			return uiErr
		},
	}
}

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Drive the device from a line console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, log, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = log.Log.Sync() }()

			cfg := opts.DeviceConfig()
			p := panel.New()
			dev := device.New(cfg, p, p, p, log.Log)
			log.Log.Info("console started", zap.Int("capacity", cfg.Capacity))

			return console.New(dev, p, cmd.OutOrStdout()).Run(cmd.InOrStdin())
		},
	}
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <scenario.yaml>...",
		Short: "Replay scripted scenarios and check their expectations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = log.Log.Sync() }()

			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				s, err := scenario.Load(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "== %s\n", s.Name)
				results, err := scenario.Run(s, log.Log)
				for _, r := range results {
					fmt.Fprintln(out, r)
				}
				if err != nil {
					if !errors.Is(err, scenario.ErrMismatch) {
						return err
					}
					fmt.Fprintf(out, "FAIL %v\n", err)
					failed++
					continue
				}
				fmt.Fprintln(out, "PASS")
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version and date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Build version: %s\n", cmp.Or(version, "N/A"))
			fmt.Fprintf(out, "Build date: %s\n", cmp.Or(buildDate, "N/A"))
		},
	}
}
