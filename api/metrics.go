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

package api

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type apiMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newApiMetrics(promRegistry prometheus.Registerer) *apiMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &apiMetrics{
		requests: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridgov_api_requests_total",
				Help: "total API requests by procedure and result code",
			},
			[]string{"procedure", "code"},
		),
		duration: promautoFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gridgov_api_request_duration_seconds",
				Help:    "API request duration by procedure",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
	}
}

func (a *Api) requestInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(
			ctx context.Context,
			req connect.AnyRequest,
		) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			resp, err := next(ctx, req)
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
				a.config.Logger.Debug(
					"request failed",
					"procedure", procedure,
					"code", code,
					"error", err,
				)
			}
			if a.metrics != nil {
				a.metrics.requests.WithLabelValues(procedure, code).Inc()
				a.metrics.duration.WithLabelValues(procedure).
					Observe(time.Since(start).Seconds())
			}
			return resp, err
		}
	}
}
