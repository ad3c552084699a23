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
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type StoreOptionFunc func(*Store)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) StoreOptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) StoreOptionFunc {
	return func(s *Store) {
		s.promRegistry = registry
	}
}

// WithVotingPeriod specifies how many heights new proposals stay open
func WithVotingPeriod(votingPeriod uint64) StoreOptionFunc {
	return func(s *Store) {
		s.votingPeriod = votingPeriod
	}
}

// WithDSN specifies a full connection string. It takes precedence over the
// individual connection options.
func WithDSN(dsn string) StoreOptionFunc {
	return func(s *Store) {
		s.dsn = dsn
	}
}

// WithHost specifies the database host
func WithHost(host string) StoreOptionFunc {
	return func(s *Store) {
		s.host = host
	}
}

// WithPort specifies the database port
func WithPort(port uint) StoreOptionFunc {
	return func(s *Store) {
		s.port = port
	}
}

// WithUser specifies the database user
func WithUser(user string) StoreOptionFunc {
	return func(s *Store) {
		s.user = user
	}
}

// WithPassword specifies the database password
func WithPassword(password string) StoreOptionFunc {
	return func(s *Store) {
		s.password = password
	}
}

// WithDatabase specifies the database name
func WithDatabase(database string) StoreOptionFunc {
	return func(s *Store) {
		s.database = database
	}
}

// WithTLS specifies the tls connection parameter (true, skip-verify or a
// registered config name)
func WithTLS(tls string) StoreOptionFunc {
	return func(s *Store) {
		s.tls = tls
	}
}
