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

// Package gormstore implements governance.Store and token balance storage on
// a GORM database handle. The SQL backends open the handle for their dialect
// and share this implementation.
package gormstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/blinklabs-io/gridgov/database/models"
	"github.com/blinklabs-io/gridgov/governance"
)

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// Backend names the SQL dialect in logs and metric names
	Backend      string
	VotingPeriod uint64
}

// Store keeps governance state and token balances in GORM models
type Store struct {
	db           *gorm.DB
	logger       *slog.Logger
	metrics      *storeMetrics
	votingPeriod uint64
}

// New migrates the schema on db and returns a store using it
func New(db *gorm.DB, cfg Config) (*Store, error) {
	if db == nil {
		return nil, errors.New("database handle is required")
	}
	if cfg.Backend == "" {
		return nil, errors.New("backend name is required")
	}
	s := &Store{
		db:           db,
		logger:       cfg.Logger,
		votingPeriod: cfg.VotingPeriod,
	}
	if s.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.votingPeriod == 0 {
		return nil, fmt.Errorf(
			"%w: voting period must be positive",
			governance.ErrInvalidConfig,
		)
	}
	// Configure tracing for GORM
	if err := s.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	if cfg.PromRegistry != nil {
		s.metrics = newStoreMetrics(cfg.PromRegistry, cfg.Backend)
	}
	for _, model := range models.MigrateModels {
		s.logger.Debug(
			fmt.Sprintf("creating table: %#v", model),
			"component", "database",
			"backend", cfg.Backend,
		)
		if err := s.db.AutoMigrate(model); err != nil {
			return nil, err
		}
	}
	// Seed the governance state row
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(
		&models.GovernanceState{ID: models.GovernanceStateID},
	)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to seed governance state: %w", result.Error)
	}
	return s, nil
}

func (s *Store) VotingPeriod() uint64 {
	return s.votingPeriod
}

// DB returns the underlying GORM database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return db.Close()
}

// transaction runs fn in a database transaction. Any error rolls the
// transaction back and is returned as is.
func (s *Store) transaction(fn func(tx *gorm.DB) error) error {
	err := s.db.Transaction(fn)
	if s.metrics != nil {
		s.metrics.observe(err)
	}
	return err
}

// forUpdate locks the selected rows until the transaction ends. SQLite
// ignores the clause and serializes writers instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
