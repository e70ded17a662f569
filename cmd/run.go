package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mousemapper/mousemapper/internal/config"
	"github.com/mousemapper/mousemapper/internal/engine"
	"github.com/mousemapper/mousemapper/internal/logger"
)

var (
	runDevice  string
	runProfile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Grab a source device and run the remapping engine until interrupted",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runDevice, "device", "", "path to the source evdev node, e.g. /dev/input/event4")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "profile name to activate (default: the config's active_profile)")
	runCmd.MarkFlagRequired("device")
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := config.Init(); err != nil {
		logger.Warn("config load failed, using defaults", "err", err)
	}
	if runProfile != "" {
		config.Get().ActiveProfile = runProfile
	}

	sup := engine.NewSupervisor()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	go logObservations(sup)

	sup.Commands() <- engine.Command{Kind: engine.CmdStart, Path: runDevice}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	sup.Shutdown()
	return nil
}

func logObservations(sup *engine.Supervisor) {
	log := logger.With("component", "run")
	for obs := range sup.Observations() {
		switch obs.Kind {
		case engine.ObsStatus:
			log.Info(obs.Text)
		case engine.ObsError:
			log.Error(obs.Text)
		case engine.ObsRawEvent:
			log.Debug("event", "type", obs.EventType, "code", obs.Code, "value", obs.Value, "ts", obs.Timestamp)
		}
	}
}
