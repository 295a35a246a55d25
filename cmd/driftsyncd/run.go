// ABOUTME: "run" subcommand for driftsyncd
// ABOUTME: Flag/config wiring, optional mDNS advertisement, and the server's errgroup-driven main loop
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/driftsync-project/driftsync-go/internal/config"
	"github.com/driftsync-project/driftsync-go/internal/discovery"
	"github.com/driftsync-project/driftsync-go/internal/logging"
	"github.com/driftsync-project/driftsync-go/internal/protocol"
	"github.com/driftsync-project/driftsync-go/internal/syncserver"
	"github.com/driftsync-project/driftsync-go/internal/xcmd"
)

var runCmdArgs struct {
	ConfigPath  string
	ListenAddr  string
	Verbose     bool
	Advertise   bool
	ServiceName string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the DRIFTsync reference server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServer(); err != nil {
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
	runCmd.Flags().StringVar(&runCmdArgs.ListenAddr, "listen", ":4318", "UDP address to listen on")
	runCmd.Flags().BoolVarP(&runCmdArgs.Verbose, "verbose", "v", false, "Log every processed request")
	runCmd.Flags().BoolVar(&runCmdArgs.Advertise, "advertise", false, "Advertise this server via mDNS")
	runCmd.Flags().StringVar(&runCmdArgs.ServiceName, "service-name", "driftsync-server", "mDNS instance name to advertise under")
}

func runServer() error {
	cfg := config.DefaultServerConfig()
	if runCmdArgs.ConfigPath != "" {
		loaded, err := config.LoadServerConfig(runCmdArgs.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if runCmd.Flags().Changed("listen") {
		cfg.ListenAddr = runCmdArgs.ListenAddr
	}
	if runCmd.Flags().Changed("verbose") {
		cfg.Verbose = runCmdArgs.Verbose
	}
	if runCmd.Flags().Changed("advertise") {
		cfg.Advertise = runCmdArgs.Advertise
	}
	if runCmd.Flags().Changed("service-name") {
		cfg.ServiceName = runCmdArgs.ServiceName
	}

	// Per-request lines are logged at debug level, so verbose mode needs
	// the logger to emit debug output.
	if cfg.Verbose && cfg.Logging.Level > zapcore.DebugLevel {
		cfg.Logging.Level = zapcore.DebugLevel
	}

	log, _, err := logging.Init(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer log.Sync()

	log.Infow("starting driftsync server", "listen_addr", cfg.ListenAddr, "verbose", cfg.Verbose)

	srv, err := syncserver.Listen(syncserver.Config{
		Addr:    cfg.ListenAddr,
		Verbose: cfg.Verbose,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}

	wg, ctx := errgroup.WithContext(context.Background())

	if cfg.Advertise {
		mgr := discovery.NewManager(discovery.Config{
			ServiceName: cfg.ServiceName,
			Port:        protocol.Port,
			Logger:      log,
		})
		if err := mgr.Advertise(); err != nil {
			return fmt.Errorf("failed to advertise mdns service: %w", err)
		}
		wg.Go(func() error {
			<-ctx.Done()
			mgr.Stop()
			return nil
		})
	}

	wg.Go(func() error {
		log.Infow("listening", "addr", srv.Addr().String())
		if err := srv.Serve(ctx); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	wg.Go(func() error {
		err := xcmd.WaitInterrupted(ctx)
		log.Infow("caught signal, shutting down", "signal", err)
		srv.Close()
		return err
	})

	return wg.Wait()
}
