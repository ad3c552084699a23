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

package badger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/gridgov/governance"
)

type storeMetrics struct {
	transactions *prometheus.CounterVec
}

func (s *Store) registerMetrics() {
	promautoFactory := promauto.With(s.promRegistry)
	s.metrics = &storeMetrics{
		transactions: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridgov_database_badger_transactions_total",
				Help: "total badger transactions by result",
			},
			[]string{"result"},
		),
	}
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "gridgov_database_badger_lsm_size_bytes",
			Help: "size of the badger LSM tree in bytes",
		},
		func() float64 {
			lsm, _ := s.db.Size()
			return float64(lsm)
		},
	)
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "gridgov_database_badger_vlog_size_bytes",
			Help: "size of the badger value log in bytes",
		},
		func() float64 {
			_, vlog := s.db.Size()
			return float64(vlog)
		},
	)
}

func (m *storeMetrics) observe(err error) {
	switch {
	case err == nil:
		m.transactions.WithLabelValues("commit").Inc()
	case governance.IsDomainError(err):
		m.transactions.WithLabelValues("rejected").Inc()
	default:
		m.transactions.WithLabelValues("error").Inc()
	}
}
