/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"adnate/internal/design"
)

const (
	FileExt        = ".adn.json"
	BackupsDirName = "backups"
)

// ErrNotFound is returned when a design, version or file does not exist.
var ErrNotFound = errors.New("not found")

// DesignFile is a design loaded from or bound to a file on disk.
type DesignFile struct {
	Path   string
	Design design.Design
	// Recovered is set when Open fell back to a backup.
	Recovered bool
}

// IsDesignFile reports whether name carries the design file extension.
func IsDesignFile(name string) bool { return strings.HasSuffix(strings.ToLower(name), FileExt) }

// Create writes d to a new file at path. An existing file is never replaced.
func Create(path string, d design.Design) (*DesignFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create %s: %w", path, fs.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create design dir: %w", err)
	}
	f := &DesignFile{Path: path, Design: d}
	if err := writeDesign(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Open loads the design at path. When the file is missing or does not parse,
// the newest backup is used instead and Recovered is set.
func Open(path string) (*DesignFile, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		d, perr := design.DeserializeDesign(b)
		if perr == nil {
			return &DesignFile{Path: path, Design: d}, nil
		}
		err = perr
	}
	d, berr := openFromLatestBackup(path)
	if berr != nil {
		if errors.Is(err, fs.ErrNotExist) && errors.Is(berr, ErrNotFound) {
			return nil, fmt.Errorf("open %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open design: %w; backup attempt: %v", err, berr)
	}
	return &DesignFile{Path: path, Design: d, Recovered: true}, nil
}

// Save sanitizes and validates the design, stamps UpdatedAt, backs up the
// current file and replaces it.
func Save(f *DesignFile, now time.Time) error {
	if f == nil {
		return errors.New("nil DesignFile")
	}
	if f.Path == "" {
		return errors.New("invalid DesignFile: missing path")
	}
	f.Design = design.Sanitize(f.Design)
	if err := design.ValidateDesign(f.Design); err != nil {
		return err
	}
	f.Design.Metadata.UpdatedAt = now.UTC()

	if _, statErr := os.Stat(f.Path); statErr == nil {
		bdir := filepath.Join(filepath.Dir(f.Path), BackupsDirName)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		stamp := now.Format("20060102-150405.000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(f.Path), stamp))
		if err := copyFile(f.Path, bpath); err != nil {
			return fmt.Errorf("backup current design: %w", err)
		}
	}
	return writeDesign(f)
}

// SaveAs binds the design to newPath and saves it there.
func SaveAs(f *DesignFile, newPath string, now time.Time) error {
	if f == nil {
		return errors.New("nil DesignFile")
	}
	if newPath == "" {
		return errors.New("new path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}
	f.Path = newPath
	return Save(f, now)
}

// AutosaveCrash writes d next to the design's other backups without
// touching the design file itself, skipping validation so a half-edited
// state still lands on disk. An empty path (a design never saved) writes
// into the temp directory. It returns the written path.
func AutosaveCrash(path string, d design.Design, now time.Time) (string, error) {
	data, err := design.Serialize(d.Metadata, d.Elements)
	if err != nil {
		return "", err
	}
	stamp := now.Format("20060102-150405.000")
	var out string
	if path == "" {
		out = filepath.Join(os.TempDir(), fmt.Sprintf("adnate-crash-%s-%s%s", d.Metadata.ID, stamp, FileExt))
	} else {
		bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return "", fmt.Errorf("ensure backups dir: %w", err)
		}
		out = filepath.Join(bdir, fmt.Sprintf("%s.%s-crash.bak", filepath.Base(path), stamp))
	}
	if err := writeFileSync(out, data); err != nil {
		return "", fmt.Errorf("write crash autosave: %w", err)
	}
	return out, nil
}

// Backups lists the backups of the design at path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func writeDesign(f *DesignFile) error {
	data, err := design.Serialize(f.Design.Metadata, f.Design.Elements)
	if err != nil {
		return err
	}
	// Transactional write: temp file in the same directory, then rename over target
	dir := filepath.Dir(f.Path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(f.Path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp design: %w", err)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(f.Path); err == nil {
		_ = os.Remove(f.Path)
	}
	if err := os.Rename(temp, f.Path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace design: %w", err)
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

func openFromLatestBackup(path string) (design.Design, error) {
	backups, err := Backups(path)
	if err != nil {
		return design.Design{}, err
	}
	if len(backups) == 0 {
		return design.Design{}, fmt.Errorf("no backups: %w", ErrNotFound)
	}
	latest := backups[len(backups)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return design.Design{}, fmt.Errorf("read latest backup: %w", err)
	}
	d, err := design.DeserializeDesign(b)
	if err != nil {
		return design.Design{}, fmt.Errorf("parse latest backup: %w", err)
	}
	return d, nil
}
