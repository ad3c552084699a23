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
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	s := &Store{}
	for _, opt := range []StoreOptionFunc{
		WithHost("db.local"),
		WithPort(3307),
		WithUser("gridgov"),
		WithPassword("secret"),
		WithDatabase("grid"),
		WithTLS("skip-verify"),
		WithVotingPeriod(720),
	} {
		opt(s)
	}
	assert.Equal(t, "db.local", s.host)
	assert.Equal(t, uint(3307), s.port)
	assert.Equal(t, "gridgov", s.user)
	assert.Equal(t, "secret", s.password)
	assert.Equal(t, "grid", s.database)
	assert.Equal(t, "skip-verify", s.tls)
	assert.Equal(t, uint64(720), s.votingPeriod)
}

func TestConnString(t *testing.T) {
	s := &Store{}
	WithPassword("secret")(s)
	s.applyDefaults()
	cfg, err := mysql.ParseDSN(s.connString())
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "localhost:3306", cfg.Addr)
	assert.Equal(t, "gridgov", cfg.DBName)
	assert.True(t, cfg.ParseTime)
}

func TestConnStringDSN(t *testing.T) {
	s := &Store{}
	WithDSN("gridgov:pw@tcp(db.local:3306)/grid?parseTime=true")(s)
	s.applyDefaults()
	assert.Equal(t, "gridgov:pw@tcp(db.local:3306)/grid?parseTime=true", s.connString())
}
