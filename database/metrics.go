/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// MetricsHook records statement counts and latencies per operation and table.
type MetricsHook struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ bun.QueryHook = (*MetricsHook)(nil)

// NewMetricsHook creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetricsHook(reg prometheus.Registerer) *MetricsHook {
	h := &MetricsHook{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roster",
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Number of executed statements.",
		}, []string{"operation", "table", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roster",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Statement latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "table"}),
	}
	if reg != nil {
		reg.MustRegister(h.queries, h.duration)
	}
	return h
}

func (h *MetricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *MetricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	op := strings.ToLower(event.Operation())
	table := eventTable(event)
	status := "ok"
	if event.Err != nil {
		status = "error"
		if is, kind := IsSqlError(event.Err); is && kind == NoRowsErr {
			status = "no_rows"
		}
	}
	h.queries.WithLabelValues(op, table, status).Inc()
	h.duration.WithLabelValues(op, table).Observe(time.Since(event.StartTime).Seconds())
}

// Collectors exposes the hook's collectors for tests and custom registries.
func (h *MetricsHook) Collectors() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	return h.queries, h.duration
}

func eventTable(event *bun.QueryEvent) string {
	if event.Model == nil {
		return "raw"
	}
	if tm, ok := event.Model.(interface{ Table() *schema.Table }); ok && tm.Table() != nil {
		return tm.Table().Name
	}
	return "raw"
}
