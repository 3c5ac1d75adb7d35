/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"testing"
	"time"
)

func TestPreviewCacheStaleness(t *testing.T) {
	lib := openLib(t, t.TempDir())
	ctx := context.Background()
	d := sampleDesign("Thumbs")

	calls := 0
	gen := func(context.Context) ([]byte, error) { calls++; return []byte("png-bytes"), nil }
	for i := 0; i < 2; i++ {
		b, err := lib.PreviewOrCreate(ctx, d, 320, 200, gen)
		if err != nil || string(b) != "png-bytes" {
			t.Fatalf("PreviewOrCreate: %q %v", b, err)
		}
	}
	if calls != 1 {
		t.Fatalf("second call should hit the cache, generator ran %d times", calls)
	}
	d.Metadata.UpdatedAt = d.Metadata.UpdatedAt.Add(time.Minute)
	if b, _ := lib.Preview(ctx, d.Metadata.ID, 320, 200, d.Metadata.UpdatedAt); b != nil {
		t.Fatalf("stale preview returned")
	}
	if _, err := lib.PreviewOrCreate(ctx, d, 320, 200, gen); err != nil || calls != 2 {
		t.Fatalf("stale preview should be regenerated: calls=%d err=%v", calls, err)
	}
}

func TestPreviewEviction(t *testing.T) {
	t.Setenv(EnvPreviewsMaxBytes, "64")
	lib := openLib(t, t.TempDir())
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		if err := lib.PutPreview(ctx, id, 100, 100, t0, make([]byte, 40)); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	total, err := lib.TotalPreviewBytes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total > 64 {
		t.Fatalf("cache over cap: %d", total)
	}
	if b, _ := lib.Preview(ctx, "c", 100, 100, t0); b == nil {
		t.Fatalf("newest preview should survive eviction")
	}
}
