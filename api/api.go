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

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/blinklabs-io/gridgov/governance"
)

const (
	GovernanceServiceName = "gridgov.governance.v1.GovernanceService"
	TokenServiceName      = "gridgov.token.v1.TokenService"
)

// TokenLedger is the subset of the token ledger exposed over the API
type TokenLedger interface {
	governance.TokenBalanceProvider
	Mint(caller governance.Identity, recipient governance.Identity, amount *big.Int) error
	Burn(caller governance.Identity, amount *big.Int) error
	Transfer(caller governance.Identity, recipient governance.Identity, amount *big.Int) error
	Approve(caller governance.Identity, spender governance.Identity, amount *big.Int) error
	TransferFrom(
		caller governance.Identity,
		owner governance.Identity,
		recipient governance.Identity,
		amount *big.Int,
	) error
	Allowance(owner governance.Identity, spender governance.Identity) *big.Int
	SetPaused(caller governance.Identity, pause bool) error
	Paused() bool
}

type ApiConfig struct {
	Logger          *slog.Logger
	PromRegistry    prometheus.Registerer
	Engine          *governance.Engine
	Ledger          TokenLedger
	Host            string
	TlsCertFilePath string
	TlsKeyFilePath  string
	Port            uint
}

// Api serves the governance engine and token ledger as Connect services
// with JSON messages
type Api struct {
	config   ApiConfig
	metrics  *apiMetrics
	server   *http.Server
	listener net.Listener
	errChan  chan error
	mutex    sync.Mutex
}

func New(cfg ApiConfig) (*Api, error) {
	if cfg.Engine == nil || cfg.Ledger == nil {
		return nil, errors.New("engine and ledger are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "api")
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	a := &Api{
		config:  cfg,
		errChan: make(chan error, 1),
	}
	if cfg.PromRegistry != nil {
		a.metrics = newApiMetrics(cfg.PromRegistry)
	}
	return a, nil
}

// Handler returns the HTTP handler for all services. It accepts HTTP/2
// without TLS.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	opts := []connect.HandlerOption{
		WithJSONCodec(),
		connect.WithCompressMinBytes(1024),
		connect.WithInterceptors(a.requestInterceptor()),
	}
	governanceSvc := &governanceService{api: a}
	tokenSvc := &tokenService{api: a}
	for procedure, handler := range map[string]http.Handler{
		CreateProposalProcedure: connect.NewUnaryHandler(
			CreateProposalProcedure,
			governanceSvc.CreateProposal,
			opts...,
		),
		CastVoteProcedure: connect.NewUnaryHandler(
			CastVoteProcedure,
			governanceSvc.CastVote,
			opts...,
		),
		ExecuteProposalProcedure: connect.NewUnaryHandler(
			ExecuteProposalProcedure,
			governanceSvc.ExecuteProposal,
			opts...,
		),
		GetProposalProcedure: connect.NewUnaryHandler(
			GetProposalProcedure,
			governanceSvc.GetProposal,
			opts...,
		),
		ListProposalsProcedure: connect.NewUnaryHandler(
			ListProposalsProcedure,
			governanceSvc.ListProposals,
			opts...,
		),
		SetPausedProcedure: connect.NewUnaryHandler(
			SetPausedProcedure,
			governanceSvc.SetPaused,
			opts...,
		),
		BalanceOfProcedure: connect.NewUnaryHandler(
			BalanceOfProcedure,
			tokenSvc.BalanceOf,
			opts...,
		),
		MintProcedure: connect.NewUnaryHandler(
			MintProcedure,
			tokenSvc.Mint,
			opts...,
		),
		TransferProcedure: connect.NewUnaryHandler(
			TransferProcedure,
			tokenSvc.Transfer,
			opts...,
		),
		BurnProcedure: connect.NewUnaryHandler(
			BurnProcedure,
			tokenSvc.Burn,
			opts...,
		),
		ApproveProcedure: connect.NewUnaryHandler(
			ApproveProcedure,
			tokenSvc.Approve,
			opts...,
		),
		TransferFromProcedure: connect.NewUnaryHandler(
			TransferFromProcedure,
			tokenSvc.TransferFrom,
			opts...,
		),
		AllowanceProcedure: connect.NewUnaryHandler(
			AllowanceProcedure,
			tokenSvc.Allowance,
			opts...,
		),
		TokenSetPausedProcedure: connect.NewUnaryHandler(
			TokenSetPausedProcedure,
			tokenSvc.SetPaused,
			opts...,
		),
	} {
		mux.Handle(procedure, handler)
	}
	mux.Handle(
		grpchealth.NewHandler(
			grpchealth.NewStaticChecker(
				GovernanceServiceName,
				TokenServiceName,
			),
			connect.WithCompressMinBytes(1024),
		),
	)
	// Use h2c so we can serve HTTP/2 without TLS
	return h2c.NewHandler(mux, &http2.Server{})
}

// Start binds the listener and serves in the background. Serve failures are
// reported on Errors.
func (a *Api) Start(ctx context.Context) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.server != nil {
		return errors.New("api already started")
	}
	addr := net.JoinHostPort(a.config.Host, fmt.Sprintf("%d", a.config.Port))
	listenConfig := net.ListenConfig{Control: socketControl}
	listener, err := listenConfig.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	a.listener = listener
	a.server = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	useTls := a.config.TlsCertFilePath != "" && a.config.TlsKeyFilePath != ""
	if useTls {
		a.config.Logger.Info("starting API TLS listener on " + listener.Addr().String())
	} else {
		a.config.Logger.Info("starting API listener on " + listener.Addr().String())
	}
	server := a.server
	go func() {
		var err error
		if useTls {
			err = server.ServeTLS(
				listener,
				a.config.TlsCertFilePath,
				a.config.TlsKeyFilePath,
			)
		} else {
			err = server.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errChan <- fmt.Errorf("api listener failed: %w", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil before Start
func (a *Api) Addr() net.Addr {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

func (a *Api) Errors() <-chan error {
	return a.errChan
}

// Stop gracefully shuts down the listener
func (a *Api) Stop(ctx context.Context) error {
	a.mutex.Lock()
	server := a.server
	a.server = nil
	a.listener = nil
	a.mutex.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
