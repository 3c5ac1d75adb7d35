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
	"path/filepath"
	"testing"
	"time"

	"adnate/internal/design"
)

func openLib(t *testing.T, root string) *Library {
	t.Helper()
	lib, err := OpenLibrary(root)
	if err != nil {
		t.Fatalf("OpenLibrary: %v", err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestOpenLibraryWALAndVersion(t *testing.T) {
	lib := openLib(t, t.TempDir())
	ctx := context.Background()
	var mode string
	if err := lib.DB().QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var schema int
	if err := lib.DB().QueryRowContext(ctx, "SELECT schema FROM version WHERE id=1").Scan(&schema); err != nil {
		t.Fatal(err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema %d want %d", schema, schemaVersion)
	}
}

func TestMigrationFromSchemaOne(t *testing.T) {
	root := t.TempDir()
	lib := openLib(t, root)
	ctx := context.Background()
	if _, err := lib.DB().ExecContext(ctx, "UPDATE version SET schema=1 WHERE id=1"); err != nil {
		t.Fatal(err)
	}
	_ = lib.Close()
	lib = openLib(t, root)
	var schema int
	_ = lib.DB().QueryRowContext(ctx, "SELECT schema FROM version WHERE id=1").Scan(&schema)
	if schema != schemaVersion {
		t.Fatalf("migration did not run, schema=%d", schema)
	}
}

func TestGalleryListAndSearch(t *testing.T) {
	root := t.TempDir()
	lib := openLib(t, root)
	ctx := context.Background()

	older := sampleDesign("Spring Launch")
	newer := sampleDesign("Summer Sale")
	newer.Metadata.UpdatedAt = t0.Add(time.Hour)
	newer.Elements[0].Content = "Fifty percent off sunglasses"
	for _, d := range []design.Design{older, newer} {
		if err := lib.Upsert(ctx, filepath.Join(root, d.Metadata.ID+FileExt), d); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	all, err := lib.List(ctx, GalleryQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != newer.Metadata.ID {
		t.Fatalf("want newest first, got %+v", all)
	}
	if all[0].Elements != 2 || all[0].Width != 1200 {
		t.Fatalf("summary fields: %+v", all[0])
	}

	byName, _ := lib.List(ctx, GalleryQuery{Name: "spring"})
	if len(byName) != 1 || byName[0].ID != older.Metadata.ID {
		t.Fatalf("name filter: %+v", byName)
	}
	byText, err := lib.List(ctx, GalleryQuery{Text: "sunglasses"})
	if err != nil {
		t.Fatalf("text search: %v", err)
	}
	if len(byText) != 1 || byText[0].ID != newer.Metadata.ID || byText[0].Snippet == "" {
		t.Fatalf("text search: %+v", byText)
	}

	newer.Metadata.Name = "Autumn Sale"
	if err := lib.Upsert(ctx, filepath.Join(root, "x"+FileExt), newer); err != nil {
		t.Fatal(err)
	}
	if got, _ := lib.List(ctx, GalleryQuery{Name: "summer"}); len(got) != 0 {
		t.Fatalf("renamed design still matches old name")
	}

	if err := lib.Remove(ctx, older.Metadata.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := lib.Lookup(ctx, older.Metadata.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after remove, got %v", err)
	}
	if err := lib.Remove(ctx, older.Metadata.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove: %v", err)
	}
}

func TestRebuildFromFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"One", "Two"} {
		if _, err := Create(filepath.Join(root, name+FileExt), sampleDesign(name)); err != nil {
			t.Fatal(err)
		}
	}
	lib := openLib(t, root)
	n, err := lib.Rebuild(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Rebuild = %d, %v", n, err)
	}
	got, _ := lib.List(context.Background(), GalleryQuery{})
	if len(got) != 2 {
		t.Fatalf("want 2 designs indexed, got %d", len(got))
	}
	_ = lib.Close()

	rebuilt, err := DetectAndRebuild(context.Background(), root)
	if err != nil || rebuilt {
		t.Fatalf("healthy index should not rebuild: %v %v", rebuilt, err)
	}
}
