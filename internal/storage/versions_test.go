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
	"errors"
	"testing"
)

func TestVersionHistory(t *testing.T) {
	lib := openLib(t, t.TempDir())
	ctx := context.Background()
	d := sampleDesign("History")

	v1, err := lib.CreateVersion(ctx, d, "first")
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	removed := d.Elements[1].ID
	d.Elements[0].Content = "changed"
	d.Elements = d.Elements[:1]
	v2, err := lib.CreateVersion(ctx, d, "second")
	if err != nil {
		t.Fatal(err)
	}
	if v1.Number != 1 || v2.Number != 2 {
		t.Fatalf("version numbers %d %d", v1.Number, v2.Number)
	}

	diff, err := lib.CompareVersions(ctx, v1.ID, v2.ID)
	if err != nil {
		t.Fatalf("CompareVersions: %v", err)
	}
	if len(diff.Removed) != 1 || diff.Removed[0] != removed || len(diff.Modified) != 1 || len(diff.Added) != 0 {
		t.Fatalf("diff %+v", diff)
	}

	restored, v3, err := lib.Rollback(ctx, v1.ID)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if len(restored.Elements) != 2 || v3.Number != 3 || v3.Description != "Rolled back to version 1" {
		t.Fatalf("rollback: %d elements, version %+v", len(restored.Elements), v3)
	}

	list, err := lib.Versions(ctx, d.Metadata.ID, 0)
	if err != nil || len(list) != 3 || list[0].Number != 3 {
		t.Fatalf("Versions: %v %+v", err, list)
	}
	n, err := lib.PruneVersions(ctx, d.Metadata.ID, 1)
	if err != nil || n != 2 {
		t.Fatalf("PruneVersions = %d, %v", n, err)
	}
	if _, err := lib.Version(ctx, v1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pruned version should be gone, got %v", err)
	}
}

func TestVersionNumbersArePerDesign(t *testing.T) {
	lib := openLib(t, t.TempDir())
	ctx := context.Background()
	a, b := sampleDesign("A"), sampleDesign("B")
	if _, err := lib.CreateVersion(ctx, a, ""); err != nil {
		t.Fatal(err)
	}
	vb, err := lib.CreateVersion(ctx, b, "")
	if err != nil {
		t.Fatal(err)
	}
	if vb.Number != 1 {
		t.Fatalf("numbering should restart per design, got %d", vb.Number)
	}
}
