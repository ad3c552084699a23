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

package gormstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/gridgov/governance"
)

type storeMetrics struct {
	transactions *prometheus.CounterVec
}

func newStoreMetrics(
	promRegistry prometheus.Registerer,
	backend string,
) *storeMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &storeMetrics{
		transactions: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridgov_database_" + backend + "_transactions_total",
				Help: "total " + backend + " transactions by result",
			},
			[]string{"result"},
		),
	}
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
