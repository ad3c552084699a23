// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gridgov/internal/config"
	"github.com/blinklabs-io/gridgov/internal/host"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the governance host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errNoConfig
			}
			logger := commonRun(os.Stdout)
			ctx, stop := signal.NotifyContext(
				cmd.Context(),
				syscall.SIGINT,
				syscall.SIGTERM,
			)
			defer stop()
			h, err := host.New(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to start host: %w", err)
			}
			logger.Info(
				"starting governance host",
				"component", programName,
				"storage", cfg.Storage,
				"admin", cfg.Admin,
			)
			serveErr := h.Serve(ctx)
			shutdownTimeout, err := cfg.ShutdownTimeoutValue()
			if err != nil {
				shutdownTimeout = 30 * time.Second
			}
			closeCtx, cancel := context.WithTimeout(
				context.Background(),
				shutdownTimeout,
			)
			defer cancel()
			if err := h.Close(closeCtx); err != nil {
				slog.Error(
					"failed to close host",
					"component", programName,
					"error", err,
				)
			}
			if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
				return serveErr
			}
			logger.Info("shutdown complete", "component", programName)
			return nil
		},
	}
}
