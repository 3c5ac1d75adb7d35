/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds adnate's process-local metrics. Nothing is served over
// HTTP; WriteMetrics dumps it in text exposition format.
var Registry = prometheus.NewRegistry()

var (
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adnate",
			Name:      "exports_total",
			Help:      "Design exports by format and result.",
		},
		[]string{"format", "result"},
	)
	exportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adnate",
			Name:      "export_duration_seconds",
			Help:      "Time spent rendering one export.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"format"},
	)
	savesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adnate",
			Name:      "saves_total",
			Help:      "Design saves by target (file, library, remote) and result.",
		},
		[]string{"target", "result"},
	)
	editsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adnate",
			Name:      "edits_total",
			Help:      "Recorded editor operations by undo label.",
		},
		[]string{"op"},
	)
	undoBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "adnate",
		Name:      "undo_history_bytes",
		Help:      "Bytes held by the undo history.",
	})
)

func init() {
	Registry.MustRegister(exportsTotal, exportDuration, savesTotal, editsTotal, undoBytes)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveExport records one export attempt.
func ObserveExport(format string, elapsed time.Duration, err error) {
	exportsTotal.WithLabelValues(format, result(err)).Inc()
	if err == nil {
		exportDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	}
}

// CountSave records one save attempt against target.
func CountSave(target string, err error) { savesTotal.WithLabelValues(target, result(err)).Inc() }

// CountEdit records one undoable editor operation.
func CountEdit(op string) { editsTotal.WithLabelValues(op).Inc() }

// SetUndoBytes publishes the undo history size.
func SetUndoBytes(n int64) { undoBytes.Set(float64(n)) }

// WriteMetrics writes the registry to path in text exposition format.
func WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
