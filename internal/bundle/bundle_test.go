/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bundle

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"adnate/internal/design"
	"adnate/internal/storage"
)

func writeDesignWithImages(t *testing.T, dir string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	d := design.NewDesign("Spring Promo", design.Size{W: 600, H: 400}, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	img := func(src string) design.Element {
		return design.MustCreate(design.Patch{Type: design.Ptr(design.TypeImage), Content: design.Ptr(src)})
	}
	d.Elements = []design.Element{
		img("logo.png"),
		img("logo.png"),
		img("https://example.com/remote.jpg"),
		img("missing.png"),
		design.MustCreate(design.Patch{Type: design.Ptr(design.TypeText), Content: design.Ptr("Hi")}),
	}
	f, err := storage.Create(filepath.Join(dir, "promo.adn.json"), d)
	if err != nil {
		t.Fatalf("create design: %v", err)
	}
	return f.Path
}

func TestPackAndUnpack(t *testing.T) {
	src := t.TempDir()
	path := writeDesignWithImages(t, src)
	zipPath := filepath.Join(src, "out", "promo.zip")

	n, err := Pack(path, zipPath)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if n != 1 {
		t.Fatalf("packed %d assets, want 1 (shared file counted once)", n)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	_ = r.Close()
	sort.Strings(names)
	want := []string{"assets/01-logo.png", manifestName, designName}
	sort.Strings(want)
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("entries = %v, want %v", names, want)
		}
	}

	dst := t.TempDir()
	f, err := Unpack(zipPath, dst)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if filepath.Base(f.Path) != "spring-promo.adn.json" {
		t.Fatalf("design file = %s", f.Path)
	}
	els := f.Design.Elements
	if els[0].Content != "assets/01-logo.png" || els[1].Content != "assets/01-logo.png" {
		t.Fatalf("local sources not rewritten: %q %q", els[0].Content, els[1].Content)
	}
	if els[2].Content != "https://example.com/remote.jpg" || els[3].Content != "missing.png" {
		t.Fatalf("other sources changed: %q %q", els[2].Content, els[3].Content)
	}
	data, err := os.ReadFile(filepath.Join(dst, "assets", "01-logo.png"))
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("asset = %q, %v", data, err)
	}

	// The source design is untouched.
	orig, err := storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if orig.Design.Elements[0].Content != "logo.png" {
		t.Fatalf("source design rewritten: %q", orig.Design.Elements[0].Content)
	}

	// A second unpack into the same folder refuses to clobber the design.
	if _, err := Unpack(zipPath, dst); !errors.Is(err, os.ErrExist) {
		t.Fatalf("second unpack: err = %v, want ErrExist", err)
	}
}

func TestUnpackRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(zf)
	w, _ := zw.Create("assets/../../escape.txt")
	_, _ = w.Write([]byte("x"))
	_ = zw.Close()
	_ = zf.Close()

	if _, err := Unpack(zipPath, filepath.Join(dir, "target")); err == nil {
		t.Fatal("escaping entry accepted")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Fatalf("escape.txt written: %v", err)
	}
}

func TestUnpackWithoutDesign(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "empty.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(zf)
	w, _ := zw.Create(manifestName)
	_, _ = w.Write([]byte("nothing"))
	_ = zw.Close()
	_ = zf.Close()

	if _, err := Unpack(zipPath, dir); !errors.Is(err, ErrNoDesign) {
		t.Fatalf("err = %v, want ErrNoDesign", err)
	}
}
