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

package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/blinklabs-io/gridgov/clock"
	"github.com/blinklabs-io/gridgov/database"
	"github.com/blinklabs-io/gridgov/event"
	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/internal/config"
	"github.com/blinklabs-io/gridgov/token"
)

// Host owns the components of a running governance engine
type Host struct {
	config         *config.Config
	logger         *slog.Logger
	promRegistry   *prometheus.Registry
	db             *database.Database
	clock          governance.Clock
	slotClock      *clock.SlotClock
	ledger         *token.Ledger
	eventBus       *event.EventBus
	engine         *governance.Engine
	tracerShutdown func(context.Context) error
	pinnedHeight   *uint64
}

type HostOptionFunc func(*Host)

// WithHeight pins the logical clock to a fixed height instead of deriving
// it from wall time
func WithHeight(height uint64) HostOptionFunc {
	return func(h *Host) {
		h.pinnedHeight = &height
	}
}

// WithPromRegistry specifies the registry to register metrics with
func WithPromRegistry(registry *prometheus.Registry) HostOptionFunc {
	return func(h *Host) {
		h.promRegistry = registry
	}
}

// New opens storage and builds the engine described by cfg
func New(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	opts ...HostOptionFunc,
) (*Host, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h := &Host{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		h.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if h.promRegistry == nil {
		h.promRegistry = prometheus.NewRegistry()
		h.promRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if err := h.init(ctx); err != nil {
		if closeErr := h.Close(ctx); closeErr != nil {
			h.logger.Error(
				"failed to clean up after init error",
				"component", "host",
				"error", closeErr,
			)
		}
		return nil, err
	}
	return h, nil
}

func (h *Host) init(ctx context.Context) error {
	cfg := h.config
	// Configure tracing
	if cfg.Tracing {
		shutdown, err := setupTracing(ctx, cfg.TracingStdout)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		h.tracerShutdown = shutdown
	}
	// Open storage
	db, err := database.New(&database.Config{
		Logger:       h.logger,
		PromRegistry: h.promRegistry,
		Storage:      cfg.Storage,
		DataDir:      cfg.DatabasePath,
		DSN:          cfg.DatabaseDsn,
		VotingPeriod: cfg.VotingPeriod,
	})
	if err != nil {
		return err
	}
	h.db = db
	// Logical clock
	if h.pinnedHeight != nil {
		h.clock = clock.NewManualClock(*h.pinnedHeight)
	} else {
		systemStart, err := cfg.SystemStartTime()
		if err != nil {
			return err
		}
		h.slotClock, err = clock.NewSlotClock(clock.SlotClockConfig{
			Logger:      h.logger,
			SystemStart: systemStart,
			SlotLength:  cfg.Clock.SlotLength,
			StartHeight: cfg.Clock.StartHeight,
		})
		if err != nil {
			return err
		}
		h.clock = h.slotClock
	}
	// Token ledger
	maxSupply, err := cfg.MaxSupplyValue()
	if err != nil {
		return err
	}
	ledgerOpts := []token.LedgerOptionFunc{
		token.WithLogger(h.logger),
		token.WithMaxSupply(maxSupply),
	}
	if balances := db.Balances(); balances != nil {
		ledgerOpts = append(ledgerOpts, token.WithBalanceStore(balances))
	}
	h.ledger, err = token.NewLedger(governance.Identity(cfg.Admin), ledgerOpts...)
	if err != nil {
		return fmt.Errorf("failed to load token ledger: %w", err)
	}
	// Engine
	h.eventBus = event.NewEventBus(h.promRegistry, h.logger)
	minQuorum, err := cfg.MinQuorumValue()
	if err != nil {
		return err
	}
	h.engine, err = governance.NewEngine(
		governance.Config{
			Admin:        governance.Identity(cfg.Admin),
			VotingPeriod: cfg.VotingPeriod,
			MinQuorum:    minQuorum,
		},
		db.Store(),
		h.ledger,
		h.clock,
		governance.WithLogger(h.logger),
		governance.WithEventBus(h.eventBus),
		governance.WithPrometheusRegistry(h.promRegistry),
	)
	if err != nil {
		return err
	}
	h.logger.Debug(
		"host initialized",
		"component", "host",
		"storage", cfg.Storage,
		"height", h.clock.CurrentHeight(),
	)
	return nil
}

// Engine returns the governance engine
func (h *Host) Engine() *governance.Engine {
	return h.engine
}

// Ledger returns the token ledger
func (h *Host) Ledger() *token.Ledger {
	return h.ledger
}

// EventBus returns the event bus the engine publishes on
func (h *Host) EventBus() *event.EventBus {
	return h.eventBus
}

// Clock returns the logical clock
func (h *Host) Clock() governance.Clock {
	return h.clock
}

// PromRegistry returns the metrics registry
func (h *Host) PromRegistry() *prometheus.Registry {
	return h.promRegistry
}

// Close releases all resources held by the host
func (h *Host) Close(ctx context.Context) error {
	var err error
	if h.slotClock != nil {
		h.slotClock.Stop()
	}
	if h.eventBus != nil {
		h.eventBus.Stop()
	}
	if h.db != nil {
		err = errors.Join(err, h.db.Close())
		h.db = nil
	}
	if h.tracerShutdown != nil {
		err = errors.Join(err, h.tracerShutdown(ctx))
		h.tracerShutdown = nil
	}
	return err
}
