// ABOUTME: "run" subcommand for driftsync-client
// ABOUTME: Flag/config wiring and the client's errgroup-driven main loop
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/driftsync-project/driftsync-go/internal/app"
	"github.com/driftsync-project/driftsync-go/internal/config"
	"github.com/driftsync-project/driftsync-go/internal/logging"
	"github.com/driftsync-project/driftsync-go/internal/xcmd"
)

var runCmdArgs struct {
	ConfigPath      string
	ServerAddr      string
	Scale           float64
	Interval        time.Duration
	Capacity        int
	MeasureAccuracy bool
	Stream          bool
	StatusAddr      string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a DRIFTsync server and report clock sync state",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runClient(); err != nil {
			if errors.Is(err, xcmd.Interrupted{}) {
				return
			}
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().StringVarP(&runCmdArgs.ConfigPath, "config", "c", "", "Path to an optional YAML configuration file")
	runCmd.Flags().StringVar(&runCmdArgs.ServerAddr, "server", "", "driftsync server address (host:port); empty browses mDNS")
	runCmd.Flags().Float64Var(&runCmdArgs.Scale, "scale", 0.001, "Multiplier applied to internal microseconds (0.001 = milliseconds)")
	runCmd.Flags().DurationVar(&runCmdArgs.Interval, "interval", 5*time.Second, "Interval between probe emissions")
	runCmd.Flags().IntVar(&runCmdArgs.Capacity, "capacity", 10, "Size of the retained sample windows")
	runCmd.Flags().BoolVar(&runCmdArgs.MeasureAccuracy, "measure-accuracy", true, "Enable the accuracy self-probe")
	runCmd.Flags().BoolVar(&runCmdArgs.Stream, "stream", false, "Run the demo stream-only loop instead of the statistics/accuracy loop")
	runCmd.Flags().StringVar(&runCmdArgs.StatusAddr, "status-addr", "", "If set, serve /status, /metrics and /healthz on this address")
}

func runClient() error {
	cfg := config.DefaultClientConfig()
	if runCmdArgs.ConfigPath != "" {
		loaded, err := config.LoadClientConfig(runCmdArgs.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if runCmd.Flags().Changed("server") {
		cfg.ServerAddr = runCmdArgs.ServerAddr
	}
	if runCmd.Flags().Changed("scale") {
		cfg.Scale = runCmdArgs.Scale
	}
	if runCmd.Flags().Changed("interval") {
		cfg.Interval = runCmdArgs.Interval
	}
	if runCmd.Flags().Changed("capacity") {
		cfg.Capacity = runCmdArgs.Capacity
	}
	if runCmd.Flags().Changed("measure-accuracy") {
		cfg.MeasureAccuracy = runCmdArgs.MeasureAccuracy
	}
	if runCmd.Flags().Changed("stream") {
		cfg.Stream = runCmdArgs.Stream
	}
	if runCmd.Flags().Changed("status-addr") {
		cfg.StatusAddr = runCmdArgs.StatusAddr
	}

	log, _, err := logging.Init(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer log.Sync()

	a := app.New(app.Config{
		ServerAddr:      cfg.ServerAddr,
		Scale:           cfg.Scale,
		Interval:        cfg.Interval,
		Capacity:        cfg.Capacity,
		MeasureAccuracy: cfg.MeasureAccuracy,
		Stream:          cfg.Stream,
		StatusAddr:      cfg.StatusAddr,
		Logger:          log,
	})

	wg, ctx := errgroup.WithContext(context.Background())

	wg.Go(func() error {
		return a.Run(ctx)
	})

	wg.Go(func() error {
		err := xcmd.WaitInterrupted(ctx)
		log.Infow("caught signal, shutting down", "signal", err)
		return err
	})

	return wg.Wait()
}
