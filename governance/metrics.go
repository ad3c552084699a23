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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	proposalsCreated  prometheus.Counter
	votesCast         prometheus.Counter
	proposalsExecuted prometheus.Counter
	operationErrors   *prometheus.CounterVec
	paused            prometheus.Gauge
}

func (m *engineMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.proposalsCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "gridgov_governance_proposals_created_total",
		Help: "total proposals created",
	})
	m.votesCast = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "gridgov_governance_votes_cast_total",
		Help: "total votes recorded",
	})
	m.proposalsExecuted = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "gridgov_governance_proposals_executed_total",
		Help: "total proposals executed",
	})
	m.operationErrors = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridgov_governance_operation_errors_total",
			Help: "total rejected governance operations by operation and error kind",
		},
		[]string{"operation", "kind"},
	)
	m.paused = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "gridgov_governance_paused",
		Help: "whether governance is paused (0 or 1)",
	})
}
