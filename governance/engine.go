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

package governance

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/blinklabs-io/gridgov/event"
	"github.com/prometheus/client_golang/prometheus"
)

// Engine exposes the public governance operations. It applies the admin and
// pause gates, reads vote weight from the token balance provider at the time
// of voting and delegates all proposal state to the Store.
//
// Operations on one Engine are serialized. Hosts running several engines
// against the same Store must serialize across them. Events are queued on the
// event bus after the operation commits and the engine lock is released, so
// a slow subscriber never stalls governance operations.
type Engine struct {
	store        Store
	balances     TokenBalanceProvider
	clock        Clock
	logger       *slog.Logger
	eventBus     *event.EventBus
	promRegistry prometheus.Registerer
	metrics      *engineMetrics
	config       Config
	mutex        sync.Mutex
	paused       bool
}

type EngineOptionFunc func(*Engine)

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) EngineOptionFunc {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEventBus specifies an event bus to announce state changes on
func WithEventBus(eventBus *event.EventBus) EngineOptionFunc {
	return func(e *Engine) {
		e.eventBus = eventBus
	}
}

// WithPrometheusRegistry specifies the registry to register metrics with
func WithPrometheusRegistry(registry prometheus.Registerer) EngineOptionFunc {
	return func(e *Engine) {
		e.promRegistry = registry
	}
}

// NewEngine creates an Engine. The pause flag is restored from the store.
func NewEngine(
	cfg Config,
	store Store,
	balances TokenBalanceProvider,
	clock Clock,
	opts ...EngineOptionFunc,
) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if store == nil || balances == nil || clock == nil {
		return nil, errors.New("store, balance provider and clock are required")
	}
	if store.VotingPeriod() != cfg.VotingPeriod {
		return nil, fmt.Errorf(
			"%w: voting period %d does not match store voting period %d",
			ErrInvalidConfig,
			cfg.VotingPeriod,
			store.VotingPeriod(),
		)
	}
	e := &Engine{
		config: Config{
			Admin:        cfg.Admin,
			VotingPeriod: cfg.VotingPeriod,
			MinQuorum:    new(big.Int).Set(cfg.MinQuorum),
		},
		store:    store,
		balances: balances,
		clock:    clock,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	paused, err := store.Paused()
	if err != nil {
		return nil, fmt.Errorf("load pause flag: %w", err)
	}
	e.paused = paused
	if e.promRegistry != nil {
		e.metrics = &engineMetrics{}
		e.metrics.init(e.promRegistry)
		e.setPausedGauge()
	}
	return e, nil
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() Config {
	return Config{
		Admin:        e.config.Admin,
		VotingPeriod: e.config.VotingPeriod,
		MinQuorum:    new(big.Int).Set(e.config.MinQuorum),
	}
}

// Paused returns the current pause flag
func (e *Engine) Paused() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.paused
}

// SetPaused sets the pause flag and returns the new value. Only the admin
// may call it, and it is allowed while paused.
func (e *Engine) SetPaused(caller Identity, pause bool) (bool, error) {
	if err := e.setPaused(caller, pause); err != nil {
		return false, err
	}
	e.publish(
		PauseChangedEventType,
		PauseChangedEvent{Caller: caller, Paused: pause},
	)
	return pause, nil
}

func (e *Engine) setPaused(caller Identity, pause bool) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if caller != e.config.Admin {
		return e.reject(
			"set_paused",
			fmt.Errorf("%w: %s is not the admin", ErrUnauthorized, caller),
		)
	}
	if err := e.store.SetPaused(pause); err != nil {
		return e.reject(
			"set_paused",
			fmt.Errorf("persist pause flag: %w", err),
		)
	}
	e.paused = pause
	e.setPausedGauge()
	e.logger.Info(
		fmt.Sprintf("governance paused set to %t", pause),
		"component", "governance",
		"caller", caller,
	)
	return nil
}

// CreateProposal creates a proposal whose voting window starts at the
// current height. Any caller may propose.
func (e *Engine) CreateProposal(
	caller Identity,
	description string,
) (ProposalID, error) {
	evt, err := e.createProposal(caller, description)
	if err != nil {
		return 0, err
	}
	e.publish(ProposalCreatedEventType, evt)
	return evt.ID, nil
}

func (e *Engine) createProposal(
	caller Identity,
	description string,
) (ProposalCreatedEvent, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if err := e.checkPaused(); err != nil {
		return ProposalCreatedEvent{}, e.reject("create_proposal", err)
	}
	if err := caller.Validate(); err != nil {
		return ProposalCreatedEvent{}, e.reject("create_proposal", err)
	}
	height := e.clock.CurrentHeight()
	id, err := e.store.CreateProposal(caller, description, height)
	if err != nil {
		return ProposalCreatedEvent{}, e.reject(
			"create_proposal",
			fmt.Errorf("create proposal: %w", err),
		)
	}
	endHeight := endHeightFor(height, e.config.VotingPeriod)
	proposal, err := e.store.GetProposal(id)
	if err != nil {
		// The proposal is already committed
		e.logger.Warn(
			"failed to read created proposal",
			"component", "governance",
			"proposal", id,
			"error", err,
		)
	} else if proposal != nil {
		endHeight = proposal.EndHeight
	}
	if e.metrics != nil {
		e.metrics.proposalsCreated.Inc()
	}
	e.logger.Info(
		fmt.Sprintf("created proposal %d", id),
		"component", "governance",
		"proposer", caller,
		"height", height,
		"end_height", endHeight,
	)
	return ProposalCreatedEvent{
		ID:        id,
		Proposer:  caller,
		EndHeight: endHeight,
	}, nil
}

// CastVote records a vote weighted by the caller's token balance at the
// current height. A zero balance is recorded as a zero weight vote and
// still uses up the caller's vote on this proposal.
func (e *Engine) CastVote(caller Identity, id ProposalID) error {
	evt, err := e.castVote(caller, id)
	if err != nil {
		return err
	}
	e.publish(VoteCastEventType, evt)
	return nil
}

func (e *Engine) castVote(caller Identity, id ProposalID) (VoteCastEvent, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if err := e.checkPaused(); err != nil {
		return VoteCastEvent{}, e.reject("cast_vote", err)
	}
	if err := caller.Validate(); err != nil {
		return VoteCastEvent{}, e.reject("cast_vote", err)
	}
	height := e.clock.CurrentHeight()
	weight := new(big.Int)
	if balance := e.balances.BalanceOf(caller); balance != nil {
		weight.Set(balance)
	}
	if err := e.store.RecordVote(id, caller, weight, height); err != nil {
		return VoteCastEvent{}, e.reject("cast_vote", err)
	}
	if e.metrics != nil {
		e.metrics.votesCast.Inc()
	}
	e.logger.Info(
		fmt.Sprintf("recorded vote on proposal %d", id),
		"component", "governance",
		"voter", caller,
		"weight", weight.String(),
		"height", height,
	)
	return VoteCastEvent{ID: id, Voter: caller, Weight: weight, Height: height}, nil
}

// ExecuteProposal marks a proposal as executed once its voting window has
// closed and its tally meets the minimum quorum. Any caller may execute.
func (e *Engine) ExecuteProposal(caller Identity, id ProposalID) error {
	evt, err := e.executeProposal(caller, id)
	if err != nil {
		return err
	}
	e.publish(ProposalExecutedEventType, evt)
	return nil
}

func (e *Engine) executeProposal(
	caller Identity,
	id ProposalID,
) (ProposalExecutedEvent, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if err := e.checkPaused(); err != nil {
		return ProposalExecutedEvent{}, e.reject("execute_proposal", err)
	}
	height := e.clock.CurrentHeight()
	if err := e.store.Execute(id, height, e.config.MinQuorum); err != nil {
		return ProposalExecutedEvent{}, e.reject("execute_proposal", err)
	}
	if e.metrics != nil {
		e.metrics.proposalsExecuted.Inc()
	}
	evt := ProposalExecutedEvent{ID: id, Height: height}
	proposal, err := e.store.GetProposal(id)
	if err != nil {
		// The execution is already committed
		e.logger.Warn(
			"failed to read executed proposal",
			"component", "governance",
			"proposal", id,
			"error", err,
		)
	} else if proposal != nil {
		evt.Votes = proposal.Votes
	}
	e.logger.Info(
		fmt.Sprintf("executed proposal %d", id),
		"component", "governance",
		"caller", caller,
		"height", height,
	)
	return evt, nil
}

// GetProposal returns a snapshot of the proposal
func (e *Engine) GetProposal(id ProposalID) (*Proposal, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	proposal, err := e.store.GetProposal(id)
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	if proposal == nil {
		return nil, NotFoundError(id)
	}
	return proposal, nil
}

// ListProposals returns snapshots of all proposals ordered by id
func (e *Engine) ListProposals() ([]*Proposal, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	proposals, err := e.store.ListProposals()
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return proposals, nil
}

// HasVoted reports whether voter has voted on the proposal
func (e *Engine) HasVoted(id ProposalID, voter Identity) (bool, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.store.HasVoted(VoteKey{ProposalID: id, Voter: voter})
}

func (e *Engine) checkPaused() error {
	if e.paused {
		return ErrSystemPaused
	}
	return nil
}

func (e *Engine) reject(operation string, err error) error {
	if e.metrics != nil {
		e.metrics.operationErrors.WithLabelValues(operation, ErrorKind(err)).Inc()
	}
	if IsDomainError(err) {
		e.logger.Debug(
			"rejected "+operation,
			"component", "governance",
			"error", err,
		)
	} else {
		e.logger.Error(
			"failed "+operation,
			"component", "governance",
			"error", err,
		)
	}
	return err
}

func (e *Engine) setPausedGauge() {
	if e.metrics == nil {
		return
	}
	if e.paused {
		e.metrics.paused.Set(1)
	} else {
		e.metrics.paused.Set(0)
	}
}

// publish queues the event without waiting for subscribers. The bus drops
// and counts events when its queue is full.
func (e *Engine) publish(eventType event.EventType, data any) {
	if e.eventBus == nil {
		return
	}
	e.eventBus.PublishAsync(eventType, event.NewEvent(eventType, data))
}
