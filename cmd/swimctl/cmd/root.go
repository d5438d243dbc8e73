// Package cmd holds the swimctl commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tehsphinx/pubsubfacade"
	"github.com/tehsphinx/pubsubfacade/logging"
	"github.com/tehsphinx/pubsubfacade/metrics"
)

var (
	configFile  string
	metricsAddr string
)

// RootCmd is the swimctl entry command.
var RootCmd = &cobra.Command{
	Use:          "swimctl",
	Short:        "swimctl publishes and subscribes to topics of a subscription manager",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yml", "facade configuration file")
	RootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address to expose prometheus metrics on, disabled if empty")

	RootCmd.AddCommand(subscribeCmd, publishCmd)
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// facadeOptions returns the options shared by all commands. With a metrics
// address set, a registry is served there until ctx is done.
func facadeOptions(ctx context.Context) []pubsubfacade.Option {
	if metricsAddr == "" {
		return nil
	}

	reg := prometheus.NewRegistry()
	errCh := metrics.Serve(ctx, metricsAddr, reg, logging.StandardLogger{})
	go func() {
		for err := range errCh {
			fmt.Println("metrics:", err)
		}
	}()
	return []pubsubfacade.Option{pubsubfacade.WithMetrics(reg)}
}
