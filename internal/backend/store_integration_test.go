/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"adnate/internal/design"
)

// openPGForTest connects to ADN_TEST_PG_DSN or skips.
func openPGForTest(t *testing.T, owner string) *Store {
	t.Helper()
	dsn := os.Getenv("ADN_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("ADN_TEST_PG_DSN not set; skipping Postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, Options{DSN: dsn, Owner: owner, Timeout: 5 * time.Second})
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStoreRoundTripScopedByOwner(t *testing.T) {
	owner := "it-" + design.NewID()
	s := openPGForTest(t, owner)
	other := openPGForTest(t, owner+"-other")
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	d := design.NewDesign("Remote 100% Sale", design.Size{W: 1080, H: 1080}, now)
	d.Elements = append(d.Elements, design.MustCreate(design.Patch{Type: design.Ptr(design.TypeText), Content: design.Ptr("hi")}))
	rev, err := s.Save(ctx, d)
	if err != nil || rev != 1 {
		t.Fatalf("save: rev=%d err=%v", rev, err)
	}
	t.Cleanup(func() { _ = s.Delete(context.Background(), d.Metadata.ID) })

	got, err := s.Load(ctx, d.Metadata.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata.Name != d.Metadata.Name || len(got.Elements) != 1 || got.Elements[0].ID != d.Elements[0].ID {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, err := other.Load(ctx, d.Metadata.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other owner should not see design: %v", err)
	}
	if _, err := other.Save(ctx, d); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other owner should not overwrite design: %v", err)
	}

	d.Metadata.Name = "Renamed"
	if rev, err := s.Save(ctx, d); err != nil || rev != 2 {
		t.Fatalf("second save: rev=%d err=%v", rev, err)
	}

	list, err := s.List(ctx, "renam", 10)
	if err != nil || len(list) != 1 || list[0].Elements != 1 {
		t.Fatalf("list by name: %+v %v", list, err)
	}
	if list, _ := s.List(ctx, "%", 10); len(list) != 0 {
		t.Fatalf("wildcards must be literal: %+v", list)
	}

	dup, err := s.Duplicate(ctx, d.Metadata.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Delete(context.Background(), dup.Metadata.ID) })
	if dup.Metadata.ID == d.Metadata.ID || dup.Metadata.Name != "Renamed (Copy)" {
		t.Fatalf("unexpected duplicate: %+v", dup.Metadata)
	}
	list, _ = s.List(ctx, "", 10)
	if len(list) != 2 || list[0].ID != dup.Metadata.ID {
		t.Fatalf("list order: %+v", list)
	}

	if err := s.Delete(ctx, d.Metadata.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, d.Metadata.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
