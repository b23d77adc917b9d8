package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pactverify/internal/adapters/process"
	"github.com/felixgeelhaar/pactverify/internal/domain/mockservice"
)

var mockServiceCmd = &cobra.Command{
	Use:   "mock-service [flags] [-- binary args...]",
	Short: "Run a local mock service until interrupted",
	Long: `Mock-service spawns the mock service binary in its own process group,
waits until it answers on host:port, and keeps it running until interrupted.
On exit the whole process group is signalled and polled until it is down.`,
	RunE: runMockService,
}

var msCfg = mockservice.DefaultConfig(1234)

// newProcessStarter is replaced in tests.
var newProcessStarter = func(cmd *cobra.Command) mockservice.ProcessStarter {
	return process.NewExecStarter(process.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
}

func init() {
	rootCmd.AddCommand(mockServiceCmd)

	flags := mockServiceCmd.Flags()
	flags.StringVar(&msCfg.Binary, "binary", msCfg.Binary, "mock service executable")
	flags.StringVar(&msCfg.Host, "host", msCfg.Host, "host the service listens on")
	flags.IntVar(&msCfg.Port, "port", msCfg.Port, "port the service listens on")
	flags.DurationVar(&msCfg.PollInterval, "poll-interval", msCfg.PollInterval, "delay between health checks")
	flags.IntVar(&msCfg.MaxAttempts, "max-attempts", msCfg.MaxAttempts, "health checks before giving up")
	flags.DurationVar(&msCfg.StartTimeout, "start-timeout", msCfg.StartTimeout, "overall start timeout")
	flags.DurationVar(&msCfg.StopTimeout, "stop-timeout", msCfg.StopTimeout, "overall stop timeout")
}

func runMockService(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	cfg := msCfg
	cfg.Args = args

	out := cmd.OutOrStdout()
	svc, err := mockservice.New(cfg, newProcessStarter(cmd),
		mockservice.WithLogger(logger),
		mockservice.WithEventHandler(func(e mockservice.Event) {
			_, _ = fmt.Fprintf(out, "%s %s -> %s\n", e.At.Format(time.RFC3339), e.From, e.To)
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Start(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "mock service running at %s (pid %d)\n", cfg.BaseURL(), svc.Status().Pid)

	select {
	case <-ctx.Done():
	case <-svc.Exited():
		logger.Warn(ctx, "mock service exited on its own")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.StopTimeout+time.Second)
	defer cancel()
	return svc.Stop(stopCtx)
}
