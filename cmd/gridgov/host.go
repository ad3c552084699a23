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
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gridgov/internal/config"
	"github.com/blinklabs-io/gridgov/internal/host"
)

var errNoConfig = errors.New("no config found in context")

// withHost opens a host for the duration of fn. A changed --height flag pins
// the logical clock.
func withHost(
	cmd *cobra.Command,
	fn func(ctx context.Context, h *host.Host) error,
) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errNoConfig
	}
	logger := commonRun(os.Stderr)
	var opts []host.HostOptionFunc
	if flag := cmd.Flags().Lookup("height"); flag != nil && flag.Changed {
		height, err := cmd.Flags().GetUint64("height")
		if err != nil {
			return err
		}
		opts = append(opts, host.WithHeight(height))
	}
	ctx := cmd.Context()
	h, err := host.New(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(ctx); err != nil {
			slog.Error(
				"failed to close host",
				"component", programName,
				"error", err,
			)
		}
	}()
	return h.Trace(ctx, "gridgov."+cmd.Name(), func(ctx context.Context) error {
		return fn(ctx, h)
	})
}
