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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/gridgov/database/badger"
	"github.com/blinklabs-io/gridgov/database/mysql"
	"github.com/blinklabs-io/gridgov/database/postgres"
	"github.com/blinklabs-io/gridgov/database/sqlite"
	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/token"
)

const (
	StorageMemory   = "memory"
	StorageSqlite   = "sqlite"
	StorageBadger   = "badger"
	StoragePostgres = "postgres"
	StorageMysql    = "mysql"
)

var ErrUnknownStorage = errors.New("unknown storage backend")

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Storage      string
	DataDir      string
	// DSN is the connection string for the postgres and mysql backends
	DSN          string
	VotingPeriod uint64
}

type Database struct {
	logger   *slog.Logger
	store    governance.Store
	balances token.BalanceStore
	storage  string
	dataDir  string
}

type openFunc func(Config) (governance.Store, token.BalanceStore, error)

var backends = map[string]openFunc{
	StorageMemory: func(cfg Config) (governance.Store, token.BalanceStore, error) {
		return governance.NewMemoryStore(cfg.VotingPeriod), nil, nil
	},
	StorageSqlite: func(cfg Config) (governance.Store, token.BalanceStore, error) {
		store, err := sqlite.New(
			sqlite.WithDataDir(cfg.DataDir),
			sqlite.WithLogger(cfg.Logger),
			sqlite.WithPromRegistry(cfg.PromRegistry),
			sqlite.WithVotingPeriod(cfg.VotingPeriod),
		)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	},
	StorageBadger: func(cfg Config) (governance.Store, token.BalanceStore, error) {
		store, err := badger.New(
			badger.WithDataDir(cfg.DataDir),
			badger.WithLogger(cfg.Logger),
			badger.WithPromRegistry(cfg.PromRegistry),
			badger.WithVotingPeriod(cfg.VotingPeriod),
		)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	},
	StoragePostgres: func(cfg Config) (governance.Store, token.BalanceStore, error) {
		store, err := postgres.New(
			postgres.WithDSN(cfg.DSN),
			postgres.WithLogger(cfg.Logger),
			postgres.WithPromRegistry(cfg.PromRegistry),
			postgres.WithVotingPeriod(cfg.VotingPeriod),
		)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	},
	StorageMysql: func(cfg Config) (governance.Store, token.BalanceStore, error) {
		store, err := mysql.New(
			mysql.WithDSN(cfg.DSN),
			mysql.WithLogger(cfg.Logger),
			mysql.WithPromRegistry(cfg.PromRegistry),
			mysql.WithVotingPeriod(cfg.VotingPeriod),
		)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	},
}

// StorageNames returns the names of the available storage backends
func StorageNames() []string {
	ret := make([]string, 0, len(backends))
	for name := range backends {
		ret = append(ret, name)
	}
	slices.Sort(ret)
	return ret
}

// New opens the configured storage backend
func New(config *Config) (*Database, error) {
	if config == nil {
		return nil, errors.New("database config is required")
	}
	cfg := *config
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	open, ok := backends[cfg.Storage]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.Storage)
	}
	if cfg.VotingPeriod == 0 {
		return nil, fmt.Errorf(
			"%w: voting period must be positive",
			governance.ErrInvalidConfig,
		)
	}
	store, balances, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}
	cfg.Logger.Debug(
		"opened storage",
		"component", "database",
		"storage", cfg.Storage,
		"data_dir", cfg.DataDir,
	)
	return &Database{
		logger:   cfg.Logger,
		store:    store,
		balances: balances,
		storage:  cfg.Storage,
		dataDir:  cfg.DataDir,
	}, nil
}

// Store returns the governance store
func (d *Database) Store() governance.Store {
	return d.store
}

// Balances returns the token balance store, or nil if the backend does not
// persist balances
func (d *Database) Balances() token.BalanceStore {
	return d.balances
}

// Storage returns the name of the storage backend
func (d *Database) Storage() string {
	return d.storage
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Close closes the underlying store
func (d *Database) Close() error {
	return d.store.Close()
}
