/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bundle packs a design file together with the local images it
// references into one zip archive, and unpacks such archives.
package bundle

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"adnate/internal/design"
	"adnate/internal/export"
	applog "adnate/internal/log"
	"adnate/internal/storage"
)

const (
	manifestName = "bundle.manifest.txt"
	designName   = "design" + storage.FileExt
	assetsDir    = "assets"
)

// ErrNoDesign is returned by Unpack for archives without a design document.
var ErrNoDesign = errors.New("bundle has no design document")

func localAsset(src string) bool {
	s := strings.TrimSpace(src)
	return s != "" && !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "data:")
}

// Pack writes the design at designPath and its local image files to dest.
// Image sources inside the archive point at assets/. Missing image files are
// logged and left as they are. It returns the number of assets packed.
func Pack(designPath, dest string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "pack").With(slog.String("design", designPath))
	if strings.TrimSpace(dest) == "" {
		return 0, errors.New("destination is required")
	}
	f, err := storage.Open(designPath)
	if err != nil {
		return 0, err
	}
	d := f.Design.Clone()
	base := filepath.Dir(f.Path)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(dest)
	zf, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	packed := map[string]string{}
	for i := range d.Elements {
		e := &d.Elements[i]
		if e.Type != design.TypeImage || !localAsset(e.Content) {
			continue
		}
		src := strings.TrimPrefix(strings.TrimSpace(e.Content), "file://")
		if !filepath.IsAbs(src) {
			src = filepath.Join(base, src)
		}
		if name, ok := packed[src]; ok {
			e.Content = name
			continue
		}
		name := path.Join(assetsDir, fmt.Sprintf("%02d-%s", len(packed)+1, filepath.Base(src)))
		if err := addFile(zw, name, src); err != nil {
			l.Warn("skip missing asset", slog.String("src", src), slog.Any("err", err))
			continue
		}
		packed[src] = name
		e.Content = name
	}

	doc, err := design.Serialize(d.Metadata, d.Elements)
	if err != nil {
		return 0, err
	}
	manifest := fmt.Sprintf("AdNate Design Bundle\nCreated: %s\nDesign: %s (%s)\nAssets: %d\n",
		time.Now().Format(time.RFC3339), d.Metadata.Name, d.Metadata.ID, len(packed))
	entries := []struct {
		name string
		data []byte
	}{{manifestName, []byte(manifest)}, {designName, doc}}
	for _, ent := range entries {
		w, err := zw.Create(ent.name)
		if err != nil {
			return 0, fmt.Errorf("add %s: %w", ent.name, err)
		}
		if _, err := w.Write(ent.data); err != nil {
			return 0, fmt.Errorf("write %s: %w", ent.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("bundle packed", slog.Int("assets", len(packed)), slog.String("zip", dest))
	return len(packed), nil
}

func addFile(zw *zip.Writer, name, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

// Unpack extracts the bundle at zipPath into dir: assets go to dir/assets
// (existing files are kept) and the design is created as a new design file
// named after the design. Entries that would land outside dir are rejected.
func Unpack(zipPath, dir string) (*storage.DesignFile, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "unpack").With(slog.String("zip", zipPath))
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	var doc []byte
	installed := 0
	for _, zf := range r.File {
		switch {
		case zf.Name == manifestName || zf.FileInfo().IsDir():
			continue
		case zf.Name == designName:
			if doc, err = readEntry(zf); err != nil {
				return nil, err
			}
			continue
		case !strings.HasPrefix(zf.Name, assetsDir+"/"):
			l.Warn("skip unknown entry", slog.String("name", zf.Name))
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(zf.Name))
		if rel, err := filepath.Rel(dir, target); err != nil || strings.HasPrefix(rel, "..") {
			return nil, fmt.Errorf("bundle entry %q escapes the target folder", zf.Name)
		}
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing asset", slog.String("path", target))
			continue
		}
		if err := extract(zf, target); err != nil {
			return nil, err
		}
		installed++
	}
	if doc == nil {
		return nil, ErrNoDesign
	}
	d, err := design.DeserializeDesign(doc)
	if err != nil {
		return nil, err
	}
	f, err := storage.Create(filepath.Join(dir, export.Slug(d.Metadata.Name)+storage.FileExt), d)
	if err != nil {
		return nil, err
	}
	l.Info("bundle unpacked", slog.Int("assets", installed), slog.String("design", f.Path))
	return f, nil
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(io.LimitReader(rc, 64<<20))
}

func extract(zf *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
