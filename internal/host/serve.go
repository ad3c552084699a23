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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinklabs-io/gridgov/api"
	"github.com/blinklabs-io/gridgov/event"
	"github.com/blinklabs-io/gridgov/governance"
)

var loggedEventTypes = []event.EventType{
	governance.ProposalCreatedEventType,
	governance.VoteCastEventType,
	governance.ProposalExecutedEventType,
	governance.PauseChangedEventType,
}

// Serve runs the slot clock and the metrics listener and logs governance
// events until ctx is done
func (h *Host) Serve(ctx context.Context) error {
	shutdownTimeout, err := h.config.ShutdownTimeoutValue()
	if err != nil {
		return err
	}
	// Log governance events
	for _, evtType := range loggedEventTypes {
		h.eventBus.SubscribeFunc(evtType, func(evt event.Event) {
			h.logger.Info(
				"governance event",
				"component", "host",
				"type", evt.Type,
				"data", fmt.Sprintf("%+v", evt.Data),
			)
		})
	}
	// Track the logical height
	heightGauge := promauto.With(h.promRegistry).NewGauge(prometheus.GaugeOpts{
		Name: "gridgov_host_height",
		Help: "current logical height",
	})
	heightGauge.Set(float64(h.clock.CurrentHeight()))
	tickDone := make(chan struct{})
	if h.slotClock != nil {
		tickCh := h.slotClock.Subscribe()
		h.slotClock.Start(ctx)
		go func() {
			defer close(tickDone)
			for tick := range tickCh {
				heightGauge.Set(float64(tick.Height))
			}
		}()
	} else {
		close(tickDone)
	}
	// Metrics listener
	var metricsServer *http.Server
	errChan := make(chan error, 1)
	if h.config.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle(
			"/metrics",
			promhttp.HandlerFor(h.promRegistry, promhttp.HandlerOpts{}),
		)
		metricsAddr := fmt.Sprintf(
			"%s:%d",
			h.config.BindAddr,
			h.config.MetricsPort,
		)
		h.logger.Info(
			"serving prometheus metrics on "+metricsAddr,
			"component", "host",
		)
		metricsServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("failed to start metrics listener: %w", err)
			}
		}()
	}
	// Governance API listener
	var runErr error
	var apiServer *api.Api
	var apiErrChan <-chan error
	if h.config.ApiPort > 0 {
		apiServer, err = api.New(api.ApiConfig{
			Logger:          h.logger,
			PromRegistry:    h.promRegistry,
			Engine:          h.engine,
			Ledger:          h.ledger,
			Host:            h.config.BindAddr,
			Port:            h.config.ApiPort,
			TlsCertFilePath: h.config.TlsCertFilePath,
			TlsKeyFilePath:  h.config.TlsKeyFilePath,
		})
		if err == nil {
			err = apiServer.Start(ctx)
		}
		if err != nil {
			runErr = err
			apiServer = nil
		} else {
			apiErrChan = apiServer.Errors()
		}
	}
	if runErr == nil {
		h.logger.Info(
			"governance host running",
			"component", "host",
			"storage", h.config.Storage,
			"height", h.clock.CurrentHeight(),
			"paused", h.engine.Paused(),
		)
		select {
		case <-ctx.Done():
			h.logger.Info("signal received, initiating graceful shutdown", "component", "host")
		case runErr = <-errChan:
			h.logger.Error(runErr.Error(), "component", "host")
		case runErr = <-apiErrChan:
			h.logger.Error(runErr.Error(), "component", "host")
		}
	}
	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			h.logger.Error("api server shutdown error", "component", "host", "error", err)
		}
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("metrics server shutdown error", "component", "host", "error", err)
		}
	}
	if h.slotClock != nil {
		h.slotClock.Stop()
	}
	<-tickDone
	return runErr
}
