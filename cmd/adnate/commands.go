/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"adnate/internal/backend"
	"adnate/internal/bundle"
	"adnate/internal/design"
	"adnate/internal/editor"
	"adnate/internal/export"
	"adnate/internal/storage"
	"adnate/internal/telemetry"
	"adnate/internal/ui"
)

// parseArgs splits leading positional arguments from flags, so commands read
// as "adnate add design.adn.json -type text".
func (a *app) parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(a.out)
	var pos []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		pos = append(pos, args[0])
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return append(pos, fs.Args()...), nil
}

func need(cmd string, pos []string, n int, what string) error {
	if len(pos) < n {
		return fmt.Errorf("%w: %s requires %s", errUsage, cmd, what)
	}
	return nil
}

func (a *app) session(d design.Design) *editor.State {
	return editor.New(d, editor.Options{History: ui.HistoryFor(a.cfg.Editor), Logger: a.log})
}

// commit writes the session's design back to its file and the folder index.
func (a *app) commit(f *storage.DesignFile, st *editor.State) error {
	f.Design = st.Design()
	err := storage.Save(f, time.Now())
	telemetry.CountSave("file", err)
	if err != nil {
		return err
	}
	a.index(f)
	return nil
}

// index refreshes the library entry of f. The index is a cache of the files,
// so failures are only logged.
func (a *app) index(f *storage.DesignFile) {
	lib, err := storage.OpenLibrary(filepath.Dir(f.Path))
	if err != nil {
		a.log.Warn("library unavailable", slog.Any("err", err))
		return
	}
	defer lib.Close()
	if err := lib.Upsert(context.Background(), f.Path, f.Design); err != nil {
		a.log.Warn("index design", slog.Any("err", err))
	}
}

func sizeFlag(size, preset string) (design.Size, bool, error) {
	switch {
	case size != "" && preset != "":
		return design.Size{}, false, fmt.Errorf("%w: -size and -preset are exclusive", errUsage)
	case size != "":
		s, err := design.ParseSize(size)
		return s, true, err
	case preset != "":
		p, ok := design.LookupPreset(preset)
		if !ok {
			return design.Size{}, false, fmt.Errorf("%w: unknown preset %q", design.ErrInvalidSize, preset)
		}
		return p.Size, true, nil
	}
	return design.Size{}, false, nil
}

func (a *app) cmdNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	name := fs.String("name", "", "design name (defaults to the file name)")
	size := fs.String("size", "", "canvas size WxH")
	preset := fs.String("preset", "", "canvas preset")
	pos, err := a.parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := need("new", pos, 1, "<file>"); err != nil {
		return err
	}
	path := pos[0]
	if !storage.IsDesignFile(path) {
		path += storage.FileExt
	}
	if *preset == "" && *size == "" {
		*preset = a.cfg.General.DefaultPreset
	}
	sz, ok, err := sizeFlag(*size, *preset)
	if err != nil {
		return err
	}
	if !ok {
		sz = design.Size{W: 1080, H: 1080}
	}
	if *name == "" {
		*name = strings.TrimSuffix(filepath.Base(path), storage.FileExt)
	}
	f, err := storage.Create(path, design.NewDesign(*name, sz, time.Now()))
	if err != nil {
		return err
	}
	a.index(f)
	fmt.Fprintf(a.out, "Created %s (%s, %s)\n", f.Path, f.Design.Metadata.Name, sz)
	return nil
}

func (a *app) cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	thumb := fs.String("thumbnail", "", "write a cached 256px PNG preview to this path")
	pos, err := a.parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := need("info", pos, 1, "<file>"); err != nil {
		return err
	}
	f, err := storage.Open(pos[0])
	if err != nil {
		return err
	}
	m := f.Design.Metadata
	fmt.Fprintf(a.out, "Name:     %s\n", m.Name)
	fmt.Fprintf(a.out, "ID:       %s\n", m.ID)
	fmt.Fprintf(a.out, "Canvas:   %dx%d (%s)\n", m.Width, m.Height, design.ClosestAspectRatio(m.Size()))
	fmt.Fprintf(a.out, "Elements: %d\n", len(f.Design.Elements))
	fmt.Fprintf(a.out, "Updated:  %s\n", m.UpdatedAt.Format(time.RFC3339))
	if f.Recovered {
		fmt.Fprintln(a.out, "Recovered from backup: yes")
	}
	for _, e := range design.PaintOrder(f.Design.Elements) {
		fmt.Fprintf(a.out, "  z=%-3d %-6s %-28s %s\n", e.ZIndex, e.Type, e.Label(), e.ID)
	}
	if *thumb == "" {
		return nil
	}
	lib, err := storage.OpenLibrary(filepath.Dir(f.Path))
	if err != nil {
		return err
	}
	defer lib.Close()
	ctx := context.Background()
	blob, err := lib.PreviewOrCreate(ctx, f.Design, 256, 256, export.ThumbnailFunc(f.Design, 256, 256))
	if err != nil {
		return err
	}
	if err := lib.EvictPreviewsToFit(ctx, storage.MaxPreviewsBytesFromEnv()); err != nil {
		a.log.Warn("evict previews", slog.Any("err", err))
	}
	return os.WriteFile(*thumb, blob, 0o644)
}

func (a *app) cmdAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	typ := fs.String("type", "", "element type: text|image|shape|icon|line")
	x := fs.Float64("x", 0, "left")
	y := fs.Float64("y", 0, "top")
	w := fs.Float64("w", 0, "width")
	h := fs.Float64("h", 0, "height")
	rot := fs.Float64("rotation", 0, "rotation in degrees")
	opacity := fs.Float64("opacity", 1, "opacity 0..1")
	content := fs.String("content", "", "text, or image source for images")
	col := fs.String("color", "", "foreground color #RRGGBB")
	bg := fs.String("bg", "", "background color #RRGGBB or transparent")
	font := fs.String("font", "", "font family")
	fontSize := fs.Float64("font-size", 0, "font size in px")
	bold := fs.Bool("bold", false, "bold text")
	italic := fs.Bool("italic", false, "italic text")
	shape := fs.String("shape", "", "shape type")
	icon := fs.String("icon", "", "icon name")
	z := fs.Int("z", 0, "zIndex")
	pos, err := a.parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := need("add", pos, 1, "<file>"); err != nil {
		return err
	}
	if *typ == "" {
		return fmt.Errorf("%w: add requires -type", errUsage)
	}

	p := design.Patch{Type: design.Ptr(design.ElementType(*typ))}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "x":
			p.X = x
		case "y":
			p.Y = y
		case "w":
			p.Width = w
		case "h":
			p.Height = h
		case "rotation":
			p.Rotation = rot
		case "opacity":
			p.Opacity = opacity
		case "content":
			p.Content = content
		case "color":
			p.Color = col
		case "bg":
			p.BackgroundColor = bg
		case "font":
			p.FontFamily = font
		case "font-size":
			p.FontSize = fontSize
		case "bold":
			p.IsBold = bold
		case "italic":
			p.IsItalic = italic
		case "shape":
			p.ShapeType = design.Ptr(design.ShapeType(*shape))
		case "icon":
			p.IconName = design.Ptr(design.IconName(*icon))
		case "z":
			p.ZIndex = z
		}
	})

	f, err := storage.Open(pos[0])
	if err != nil {
		return err
	}
	st := a.session(f.Design)
	e, err := st.AddElement(p)
	if err != nil {
		return err
	}
	if err := a.commit(f, st); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s\n", e.Type, e.ID)
	return nil
}

func (a *app) cmdImport(args []string) error {
	pos, err := a.parseArgs(flag.NewFlagSet("import", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := need("import", pos, 2, "<file> and <elements.json>"); err != nil {
		return err
	}
	f, err := storage.Open(pos[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(pos[1])
	if err != nil {
		return err
	}
	st := a.session(f.Design)
	if err := st.Import(data); err != nil {
		return err
	}
	if err := a.commit(f, st); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d elements into %s\n", len(st.Elements()), f.Path)
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "", "output file, or output folder with -preset")
	format := fs.String("format", "", "png|svg|pdf (default from -o or config)")
	scale := fs.Float64("scale", 0, "pixel scale (default from config)")
	preset := fs.String("preset", "", "batch preset: web|print|social")
	pos, err := a.parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := need("export", pos, 1, "<file>"); err != nil {
		return err
	}
	f, err := storage.Open(pos[0])
	if err != nil {
		return err
	}
	opt := export.Options{Scale: a.cfg.Export.Scale, AssetDir: filepath.Dir(f.Path)}
	if *scale > 0 {
		opt.Scale = *scale
	}

	if *preset != "" {
		p, ok := export.LookupPreset(*preset)
		if !ok {
			return fmt.Errorf("%w: unknown export preset %q", errUsage, *preset)
		}
		bo := export.BatchOptions{Preset: p.Name, Scale: *scale, OutDir: *out, Options: opt}
		if *format != "" {
			ff, err := export.ParseFormat(*format)
			if err != nil {
				return err
			}
			bo.Formats = []export.Format{ff}
		}
		if bo.OutDir == "" {
			bo.OutDir = filepath.Join(filepath.Dir(f.Path), "exports")
		}
		written, err := export.BatchExport(ctx, f.Design, bo)
		for _, w := range written {
			fmt.Fprintln(a.out, "Wrote", w)
		}
		return err
	}

	var ff export.Format
	switch {
	case *format != "":
		ff, err = export.ParseFormat(*format)
	case *out != "":
		ff, err = export.FormatFor(*out)
	default:
		ff, err = export.ParseFormat(a.cfg.Export.Format)
	}
	if err != nil {
		return err
	}
	if *out == "" {
		*out = strings.TrimSuffix(f.Path, storage.FileExt) + "." + string(ff)
	}
	if err := export.WriteFile(ctx, *out, f.Design, ff, opt); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Wrote", *out)
	return nil
}

func (a *app) cmdResize(args []string) error {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	size := fs.String("size", "", "canvas size WxH")
	preset := fs.String("preset", "", "canvas preset")
	scaleEls := fs.Bool("scale-elements", false, "scale elements with the canvas")
	pos, err := a.parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := need("resize", pos, 1, "<file>"); err != nil {
		return err
	}
	sz, ok, err := sizeFlag(*size, *preset)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: resize requires -size or -preset", errUsage)
	}
	f, err := storage.Open(pos[0])
	if err != nil {
		return err
	}
	st := a.session(f.Design)
	if *scaleEls {
		err = st.ScaleToCanvas(sz)
	} else {
		err = st.ResizeCanvas(sz)
	}
	if err != nil {
		return err
	}
	if err := a.commit(f, st); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Resized %s to %s\n", f.Path, sz)
	return nil
}

func (a *app) library(path string) (*storage.DesignFile, *storage.Library, error) {
	f, err := storage.Open(path)
	if err != nil {
		return nil, nil, err
	}
	lib, err := storage.OpenLibrary(filepath.Dir(f.Path))
	if err != nil {
		return nil, nil, err
	}
	return f, lib, nil
}

func (a *app) cmdSnapshot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	msg := fs.String("m", "", "version description")
	pos, err := a.parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := need("snapshot", pos, 1, "<file>"); err != nil {
		return err
	}
	f, lib, err := a.library(pos[0])
	if err != nil {
		return err
	}
	defer lib.Close()
	v, err := lib.CreateVersion(ctx, f.Design, *msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Version %d recorded (id %d)\n", v.Number, v.ID)
	return nil
}

func (a *app) cmdVersions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("versions", flag.ContinueOnError)
	limit := fs.Int("n", 20, "number of versions")
	diff := fs.String("diff", "", "compare two version ids: A,B")
	pos, err := a.parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := need("versions", pos, 1, "<file>"); err != nil {
		return err
	}
	f, lib, err := a.library(pos[0])
	if err != nil {
		return err
	}
	defer lib.Close()
	if *diff != "" {
		l, r, ok := strings.Cut(*diff, ",")
		va, errA := strconv.ParseInt(strings.TrimSpace(l), 10, 64)
		vb, errB := strconv.ParseInt(strings.TrimSpace(r), 10, 64)
		if !ok || errA != nil || errB != nil {
			return fmt.Errorf("%w: -diff expects two version ids like 3,5", errUsage)
		}
		d, err := lib.CompareVersions(ctx, va, vb)
		if err != nil {
			return err
		}
		if d.Empty() {
			fmt.Fprintln(a.out, "No changes")
			return nil
		}
		for _, id := range d.Added {
			fmt.Fprintln(a.out, "+", id)
		}
		for _, id := range d.Removed {
			fmt.Fprintln(a.out, "-", id)
		}
		for _, id := range d.Modified {
			fmt.Fprintln(a.out, "~", id)
		}
		return nil
	}
	vs, err := lib.Versions(ctx, f.Design.Metadata.ID, *limit)
	if err != nil {
		return err
	}
	if len(vs) == 0 {
		fmt.Fprintln(a.out, "No versions recorded")
	}
	for _, v := range vs {
		fmt.Fprintf(a.out, "%4d  v%-3d %s  %s\n", v.ID, v.Number, v.CreatedAt.Local().Format("2006-01-02 15:04"), v.Description)
	}
	return nil
}

func (a *app) cmdRollback(ctx context.Context, args []string) error {
	pos, err := a.parseArgs(flag.NewFlagSet("rollback", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := need("rollback", pos, 2, "<file> and <version-id>"); err != nil {
		return err
	}
	id, err := strconv.ParseInt(pos[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad version id %q", errUsage, pos[1])
	}
	f, lib, err := a.library(pos[0])
	if err != nil {
		return err
	}
	defer lib.Close()
	v, err := lib.Version(ctx, id)
	if err != nil {
		return err
	}
	if v.DesignID != f.Design.Metadata.ID {
		return fmt.Errorf("version %d belongs to another design: %w", id, storage.ErrNotFound)
	}
	d, nv, err := lib.Rollback(ctx, id)
	if err != nil {
		return err
	}
	f.Design = d
	err = storage.Save(f, time.Now())
	telemetry.CountSave("file", err)
	if err != nil {
		return err
	}
	if err := lib.Upsert(ctx, f.Path, f.Design); err != nil {
		a.log.Warn("index design", slog.Any("err", err))
	}
	fmt.Fprintf(a.out, "Restored version %d as version %d\n", v.Number, nv.Number)
	return nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	name := fs.String("name", "", "filter by name")
	text := fs.String("text", "", "full-text search over text elements")
	rebuild := fs.Bool("rebuild", false, "rebuild the index from the design files first")
	remote := fs.Bool("remote", false, "list the remote store instead")
	pos, err := a.parseArgs(fs, args)
	if err != nil {
		return err
	}
	if *remote {
		return a.listRemote(ctx, *name)
	}
	dir := "."
	if len(pos) > 0 {
		dir = pos[0]
	}
	if rebuilt, err := storage.DetectAndRebuild(ctx, dir); err != nil {
		return err
	} else if rebuilt {
		fmt.Fprintln(a.out, "Index was damaged and has been rebuilt")
	}
	lib, err := storage.OpenLibrary(dir)
	if err != nil {
		return err
	}
	defer lib.Close()
	if *rebuild {
		if _, err := lib.Rebuild(ctx); err != nil {
			return err
		}
	}
	rows, err := lib.List(ctx, storage.GalleryQuery{Name: *name, Text: *text})
	if err != nil {
		return err
	}
	for _, r := range rows {
		line := fmt.Sprintf("%-32s %5dx%-5d %3d el  %s", r.Name, r.Width, r.Height, r.Elements, r.Path)
		if r.Snippet != "" {
			line += "  " + r.Snippet
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *app) cmdBundle(args []string) error {
	pos, err := a.parseArgs(flag.NewFlagSet("bundle", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := need("bundle", pos, 2, "<file> and <out.zip>"); err != nil {
		return err
	}
	n, err := bundle.Pack(pos[0], pos[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Bundled %s with %d assets into %s\n", pos[0], n, pos[1])
	return nil
}

func (a *app) cmdUnbundle(args []string) error {
	pos, err := a.parseArgs(flag.NewFlagSet("unbundle", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := need("unbundle", pos, 2, "<bundle.zip> and <dir>"); err != nil {
		return err
	}
	f, err := bundle.Unpack(pos[0], pos[1])
	if err != nil {
		return err
	}
	a.index(f)
	fmt.Fprintf(a.out, "Unpacked %s into %s\n", f.Design.Metadata.Name, f.Path)
	return nil
}

func (a *app) remote(ctx context.Context) (*backend.Store, error) {
	s, err := backend.Open(ctx, backend.OptionsFrom(a.cfg.Remote, a.password))
	if errors.Is(err, backend.ErrNotConfigured) {
		return nil, fmt.Errorf("%w (set remote.dsn in the config or ADN_REMOTE_DSN)", err)
	}
	return s, err
}

func (a *app) listRemote(ctx context.Context, name string) error {
	s, err := a.remote(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	rows, err := s.List(ctx, name, 100)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Fprintf(a.out, "%-32s %5dx%-5d rev %-4d %s\n", r.Name, r.Width, r.Height, r.Revision, r.ID)
	}
	return nil
}

func (a *app) cmdPush(ctx context.Context, args []string) error {
	pos, err := a.parseArgs(flag.NewFlagSet("push", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := need("push", pos, 1, "<file>"); err != nil {
		return err
	}
	f, err := storage.Open(pos[0])
	if err != nil {
		return err
	}
	s, err := a.remote(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	rev, err := s.Save(ctx, f.Design)
	telemetry.CountSave("remote", err)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Pushed %s as %s (revision %d)\n", f.Design.Metadata.Name, s.Owner(), rev)
	return nil
}

func (a *app) cmdPull(ctx context.Context, args []string) error {
	pos, err := a.parseArgs(flag.NewFlagSet("pull", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if err := need("pull", pos, 2, "<id> and <file>"); err != nil {
		return err
	}
	s, err := a.remote(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	d, err := s.Load(ctx, pos[0])
	if err != nil {
		return err
	}
	path := pos[1]
	if !storage.IsDesignFile(path) {
		path += storage.FileExt
	}
	var f *storage.DesignFile
	if _, statErr := os.Stat(path); statErr == nil {
		f = &storage.DesignFile{Path: path, Design: d}
		err = storage.Save(f, d.Metadata.UpdatedAt)
	} else {
		f, err = storage.Create(path, d)
	}
	telemetry.CountSave("file", err)
	if err != nil {
		return err
	}
	a.index(f)
	fmt.Fprintf(a.out, "Pulled %s into %s\n", d.Metadata.Name, f.Path)
	return nil
}

func (a *app) cmdUI(args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	return ui.Run(path, a.cfg)
}
