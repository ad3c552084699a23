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

package sqlite

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/blinklabs-io/gridgov/database/internal/gormstore"
	"github.com/blinklabs-io/gridgov/governance"
)

const dbFileName = "gridgov.sqlite"

// Store is a SQLite implementation of governance.Store. It also persists
// token balances for the token ledger.
type Store struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	dataDir      string
	votingPeriod uint64
}

var _ governance.Store = (*Store)(nil)

// New creates a SQLite store. Uses an in-memory database if no data dir is
// given.
func New(opts ...StoreOptionFunc) (*Store, error) {
	s := &Store{
		votingPeriod: governance.DefaultVotingPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	gormConfig := &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	}
	var db *gorm.DB
	var err error
	if s.dataDir == "" {
		db, err = gorm.Open(sqlite.Open(":memory:"), gormConfig)
		if err != nil {
			return nil, err
		}
		// Every connection to ":memory:" is a separate database
		sqlDb, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDb.SetMaxOpenConns(1)
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(s.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dbPath := filepath.Join(s.dataDir, dbFileName)
		connOpts := "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		db, err = gorm.Open(
			sqlite.Open(fmt.Sprintf("file:%s?%s", dbPath, connOpts)),
			gormConfig,
		)
		if err != nil {
			return nil, err
		}
	}
	s.Store, err = gormstore.New(db, gormstore.Config{
		Logger:       s.logger,
		PromRegistry: s.promRegistry,
		Backend:      "sqlite",
		VotingPeriod: s.votingPeriod,
	})
	if err != nil {
		if sqlDb, dbErr := db.DB(); dbErr == nil {
			_ = sqlDb.Close()
		}
		return nil, err
	}
	return s, nil
}
