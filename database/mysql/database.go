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

package mysql

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/blinklabs-io/gridgov/database/internal/gormstore"
	"github.com/blinklabs-io/gridgov/governance"
)

// Store is a MySQL implementation of governance.Store. It also persists
// token balances for the token ledger.
type Store struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	dsn          string
	host         string
	user         string
	password     string
	database     string
	tls          string
	port         uint
	votingPeriod uint64
}

var _ governance.Store = (*Store)(nil)

// New connects to MySQL and migrates the governance schema
func New(opts ...StoreOptionFunc) (*Store, error) {
	s := &Store{
		votingPeriod: governance.DefaultVotingPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.applyDefaults()
	db, err := gorm.Open(
		gormmysql.Open(s.connString()),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	// Configure connection pool
	sqlDb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDb.SetMaxIdleConns(10)
	sqlDb.SetMaxOpenConns(100)
	sqlDb.SetConnMaxLifetime(time.Hour)
	s.Store, err = gormstore.New(db, gormstore.Config{
		Logger:       s.logger,
		PromRegistry: s.promRegistry,
		Backend:      "mysql",
		VotingPeriod: s.votingPeriod,
	})
	if err != nil {
		_ = sqlDb.Close()
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info(
			"connected to mysql",
			"component", "database",
			"host", s.host,
			"port", s.port,
			"database", s.database,
		)
	}
	return s, nil
}

func (s *Store) applyDefaults() {
	if s.host == "" {
		s.host = "localhost"
	}
	if s.port == 0 {
		s.port = 3306
	}
	if s.user == "" {
		s.user = "root"
	}
	if s.database == "" {
		s.database = "gridgov"
	}
}

func (s *Store) connString() string {
	if dsn := strings.TrimSpace(s.dsn); dsn != "" {
		return dsn
	}
	cfg := mysql.NewConfig()
	cfg.User = s.user
	cfg.Passwd = s.password
	cfg.Net = "tcp"
	cfg.Addr = s.host + ":" + strconv.FormatUint(uint64(s.port), 10)
	cfg.DBName = s.database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	cfg.TLSConfig = s.tls
	return cfg.FormatDSN()
}
