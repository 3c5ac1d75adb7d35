/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountAndWrite(t *testing.T) {
	before := testutil.ToFloat64(exportsTotal.WithLabelValues("svg", "error"))
	ObserveExport("svg", 10*time.Millisecond, errors.New("boom"))
	ObserveExport("svg", 10*time.Millisecond, nil)
	if got := testutil.ToFloat64(exportsTotal.WithLabelValues("svg", "error")); got != before+1 {
		t.Fatalf("error exports = %v, want %v", got, before+1)
	}
	CountSave("file", nil)
	CountEdit("Move element")
	SetUndoBytes(2048)
	if got := testutil.ToFloat64(undoBytes); got != 2048 {
		t.Fatalf("undo bytes gauge = %v", got)
	}

	path := filepath.Join(t.TempDir(), "m", "adnate.prom")
	if err := WriteMetrics(path); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"adnate_exports_total", "adnate_export_duration_seconds_bucket", "adnate_saves_total", "adnate_edits_total", "adnate_undo_history_bytes 2048"} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("metrics file lacks %q:\n%s", want, b)
		}
	}
	if err := WriteMetrics(""); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}
}
