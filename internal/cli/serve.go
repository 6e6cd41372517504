// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secureelement.
//
// go-secureelement is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secureelement/pkg/logging"
	"github.com/jeremyhahn/go-secureelement/pkg/metrics"
)

// serveCmd runs a long-lived session exposing the metrics endpoint
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a slot manager session with a Prometheus metrics endpoint",
	Long: `Build the slot table from provisioning data, restore persisted
bindings, and keep the session alive while exposing slot gauges and
operation counters on the configured metrics address. Stops on SIGINT or
SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			handleError(err)
		}
		logger := logging.NewLogger(cfg.Debug())
		if _, err := buildProvider(cfg); err != nil {
			handleError(err)
		}
		server := metrics.NewServer(cfg.Metrics.Listen)
		errCh := make(chan error, 1)
		go func() {
			logger.Info("metrics endpoint listening", "addr", cfg.Metrics.Listen)
			errCh <- server.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
		case err := <-errCh:
			if err != nil {
				handleError(err)
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.MaybeError(server.Shutdown(ctx))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
