//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"adnate/internal/config"
	"adnate/internal/crash"
	"adnate/internal/design"
	"adnate/internal/editor"
	"adnate/internal/export"
	applog "adnate/internal/log"
	"adnate/internal/storage"
	"adnate/internal/telemetry"
	"adnate/internal/version"
)

// Run opens the editor window on the design file at path. An empty or
// missing path starts a new design that is saved on first Save.
func Run(path string, cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("path", path))

	file, err := openOrNew(path, cfg)
	if err != nil {
		return err
	}
	if file.Recovered {
		l.Warn("design recovered from backup", slog.String("path", file.Path))
	}
	st := editor.New(file.Design, EditorOptions(cfg.Editor))
	crash.Track(&crash.Session{Path: file.Path, Current: st.Design})
	defer crash.Track(nil)

	var lib *storage.Library
	if file.Path != "" {
		if lib, err = storage.OpenLibrary(filepath.Dir(file.Path)); err != nil {
			l.Warn("library unavailable", slog.Any("err", err))
			lib = nil
		} else {
			defer lib.Close()
		}
	}

	a := app.NewWithID("io.adnate.editor")
	w := a.NewWindow("AdNate")
	w.Resize(fyne.NewSize(1280, 820))

	fonts := export.NewFontLibrary()
	view := NewDesignCanvas(st, fonts)
	status := widget.NewLabel("")
	e := &editorWindow{w: w, st: st, file: file, lib: lib, cfg: cfg, view: view, status: status, log: l}

	layers := e.layerPanel()
	props := e.propertiesPanel()
	view.OnTextEdit = e.showTextEdit

	st.OnChange(func() {
		e.updateTitle()
		layers.Refresh()
		e.refreshProps()
		view.Refresh()
	})

	right := container.NewVSplit(layers, container.NewVScroll(props))
	right.SetOffset(0.45)
	split := container.NewHSplit(view, right)
	split.SetOffset(0.72)
	w.SetContent(container.NewBorder(e.toolbar(), status, nil, nil, split))
	w.SetMainMenu(e.menu())
	e.updateTitle()

	stop := e.autosave(time.Duration(cfg.General.AutosaveSeconds) * time.Second)
	defer stop()

	w.SetCloseIntercept(func() {
		if !st.IsDirty() {
			w.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Save before closing?", func(ok bool) {
			if ok {
				e.save()
			}
			w.Close()
		}, w)
	})
	w.ShowAndRun()
	telemetry.Default().Flush(context.Background())
	return nil
}

func openOrNew(path string, cfg config.AppConfig) (*storage.DesignFile, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return storage.Open(path)
		}
	}
	size := design.Size{W: 1080, H: 1080}
	if pr, ok := design.LookupPreset(cfg.General.DefaultPreset); ok {
		size = pr.Size
	}
	name := "Untitled design"
	if path != "" {
		name = strings.TrimSuffix(filepath.Base(path), storage.FileExt)
	}
	d := design.NewDesign(name, size, time.Now())
	if path == "" {
		return &storage.DesignFile{Design: d}, nil
	}
	return storage.Create(path, d)
}

type editorWindow struct {
	w      fyne.Window
	st     *editor.State
	file   *storage.DesignFile
	lib    *storage.Library
	cfg    config.AppConfig
	view   *DesignCanvas
	status *widget.Label
	log    *slog.Logger

	refreshProps func()
}

func (e *editorWindow) updateTitle() {
	m := e.st.Metadata()
	title := fmt.Sprintf("AdNate %s - %s (%dx%d)", version.String(), m.Name, m.Width, m.Height)
	if e.st.IsDirty() {
		title += " *"
	}
	e.w.SetTitle(title)
}

func (e *editorWindow) fail(op string, err error) {
	e.log.Error(op+" failed", slog.Any("err", err))
	dialog.ShowError(err, e.w)
}

func (e *editorWindow) add(t design.ElementType, p design.Patch) {
	p.Type = &t
	if _, err := e.st.AddElement(p); err != nil {
		e.fail("add "+string(t), err)
	}
}

func (e *editorWindow) toolbar() *widget.Toolbar {
	return widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), e.save),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { e.st.Undo() }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { e.st.Redo() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { e.st.ZoomIn(); e.view.Recenter() }),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { e.st.ZoomOut(); e.view.Recenter() }),
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() { e.st.SetZoom(1); e.view.Recenter() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { e.add(design.TypeText, design.Patch{}) }),
		widget.NewToolbarAction(theme.CheckButtonIcon(), func() { e.add(design.TypeShape, design.Patch{}) }),
		widget.NewToolbarAction(theme.RadioButtonCheckedIcon(), func() { e.add(design.TypeIcon, design.Patch{}) }),
		widget.NewToolbarAction(theme.MoreHorizontalIcon(), func() { e.add(design.TypeLine, design.Patch{}) }),
		widget.NewToolbarAction(theme.FileImageIcon(), e.addImage),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() {
			if _, err := e.st.Duplicate(); err != nil && !errors.Is(err, editor.ErrNoSelection) {
				e.fail("duplicate", err)
			}
		}),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			if err := e.st.Delete(); err != nil && !errors.Is(err, editor.ErrNoSelection) {
				e.fail("delete", err)
			}
		}),
	)
}

func (e *editorWindow) menu() *fyne.MainMenu {
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Save", e.save),
		fyne.NewMenuItem("Import Elements…", e.importElements),
		fyne.NewMenuItem("Export Elements…", e.exportElements),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Image…", e.exportImage),
		fyne.NewMenuItem("Snapshot Version", e.snapshot),
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { e.st.Undo() }),
		fyne.NewMenuItem("Redo", func() { e.st.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Rename Design…", e.rename),
		fyne.NewMenuItem("Clear Canvas", func() {
			dialog.ShowConfirm("Clear canvas", "Remove every element?", func(ok bool) {
				if ok {
					e.st.ClearCanvas()
				}
			}, e.w)
		}),
	)
	var sizes []*fyne.MenuItem
	for _, pr := range design.Presets() {
		key := pr.Key
		sizes = append(sizes, fyne.NewMenuItem(fmt.Sprintf("%s (%s)", pr.Label, pr.Size), func() {
			if err := e.st.ApplyPreset(key); err != nil {
				e.fail("apply preset", err)
				return
			}
			e.view.Recenter()
		}))
	}
	return fyne.NewMainMenu(file, edit, fyne.NewMenu("Canvas", sizes...))
}

func (e *editorWindow) save() {
	if e.file.Path == "" {
		d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				e.fail("save", err)
				return
			}
			if uc == nil {
				return
			}
			p := uc.URI().Path()
			_ = uc.Close()
			if !storage.IsDesignFile(p) {
				p += storage.FileExt
			}
			e.file.Path = p
			crash.Track(&crash.Session{Path: p, Current: e.st.Design})
			e.save()
		}, e.w)
		d.SetFileName(export.Slug(e.st.Metadata().Name) + storage.FileExt)
		d.Show()
		return
	}
	now := time.Now()
	e.file.Design = e.st.Design()
	err := storage.Save(e.file, now)
	telemetry.CountSave("file", err)
	if err != nil {
		e.fail("save", err)
		return
	}
	e.st.MarkSaved(now)
	if e.lib != nil {
		if err := e.lib.Upsert(context.Background(), e.file.Path, e.file.Design); err != nil {
			e.log.Warn("library index update failed", slog.Any("err", err))
		}
	}
	e.cfg.AddRecent(e.file.Path)
	if err := config.Save(e.cfg, ""); err != nil {
		e.log.Warn("recent files not saved", slog.Any("err", err))
	}
	e.status.SetText("Saved " + e.file.Path)
}

func (e *editorWindow) autosave(every time.Duration) (stop func()) {
	if every <= 0 {
		return func() {}
	}
	t := time.NewTicker(every)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fyne.Do(func() {
					if e.file.Path != "" && e.st.IsDirty() {
						e.save()
					}
				})
			}
		}
	}()
	return func() { t.Stop(); close(done) }
}

func (e *editorWindow) snapshot() {
	if e.lib == nil {
		dialog.ShowInformation("Versions", "Save the design to a file first.", e.w)
		return
	}
	desc := widget.NewEntry()
	dialog.ShowForm("Snapshot Version", "Create", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Description", desc),
	}, func(ok bool) {
		if !ok {
			return
		}
		v, err := e.lib.CreateVersion(context.Background(), e.st.Design(), desc.Text)
		if err != nil {
			e.fail("snapshot", err)
			return
		}
		e.status.SetText(fmt.Sprintf("Version %d created", v.ID))
	}, e.w)
}

func (e *editorWindow) rename() {
	name := widget.NewEntry()
	name.SetText(e.st.Metadata().Name)
	dialog.ShowForm("Rename Design", "Rename", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Name", name),
	}, func(ok bool) {
		if ok {
			e.st.Rename(name.Text)
		}
	}, e.w)
}

func (e *editorWindow) addImage() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			e.fail("add image", err)
			return
		}
		if rc == nil {
			return
		}
		src := rc.URI().Path()
		_ = rc.Close()
		e.add(design.TypeImage, design.Patch{Content: &src})
	}, e.w)
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif"}))
	d.Show()
}

// importElements opens an editable JSON dialog prefilled with the current
// elements. Errors are shown inline and the dialog stays open.
func (e *editorWindow) importElements() {
	var d dialog.Dialog
	form := newImportForm(e.st, func(n int) {
		e.status.SetText(fmt.Sprintf("Imported %d elements", n))
	})
	load := widget.NewButtonWithIcon("Load File…", theme.FolderOpenIcon(), func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				e.fail("import", err)
				return
			}
			if rc == nil {
				return
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				e.fail("import", err)
				return
			}
			form.entry.SetText(string(data))
		}, e.w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		fd.Show()
	})
	apply := widget.NewButtonWithIcon("Import", theme.ConfirmIcon(), func() {
		if form.submit() {
			d.Hide()
		}
	})
	apply.Importance = widget.HighImportance
	cancel := widget.NewButton("Cancel", func() { d.Hide() })
	buttons := container.NewBorder(nil, nil, load, container.NewHBox(cancel, apply))
	content := container.NewBorder(nil, container.NewVBox(form.errText, buttons), nil, nil, form.entry)
	d = dialog.NewCustomWithoutButtons("Import Elements", content, e.w)
	d.Resize(fyne.NewSize(560, 420))
	d.Show()
}

func (e *editorWindow) exportElements() {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			e.fail("export elements", err)
			return
		}
		if uc == nil {
			return
		}
		defer uc.Close()
		data, err := e.st.Export()
		if err == nil {
			_, err = uc.Write(data)
		}
		if err != nil {
			e.fail("export elements", err)
		}
	}, e.w)
	d.SetFileName(export.Slug(e.st.Metadata().Name) + ".json")
	d.Show()
}

func (e *editorWindow) exportImage() {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			e.fail("export", err)
			return
		}
		if uc == nil {
			return
		}
		p := uc.URI().Path()
		_ = uc.Close()
		f, ferr := export.FormatFor(p)
		if ferr != nil {
			if f, ferr = export.ParseFormat(e.cfg.Export.Format); ferr != nil {
				f = export.PNG
			}
			p += "." + string(f)
		}
		opt := export.Options{Scale: e.cfg.Export.Scale, Fonts: e.view.fonts}
		if e.file.Path != "" {
			opt.AssetDir = filepath.Dir(e.file.Path)
		}
		if err := export.WriteFile(context.Background(), p, e.st.Design(), f, opt); err != nil {
			e.fail("export", err)
			return
		}
		e.status.SetText("Exported " + p)
	}, e.w)
	d.SetFileName(export.Slug(e.st.Metadata().Name) + ".png")
	d.Show()
}

func (e *editorWindow) showTextEdit(te editor.TextEdit) {
	entry := widget.NewMultiLineEntry()
	entry.SetText(te.Value)
	entry.OnChanged = e.st.SetTextEditValue
	dialog.ShowCustomConfirm("Edit Text", "Done", "Cancel", entry, func(ok bool) {
		if ok {
			e.st.CommitTextEdit()
		} else {
			e.st.CancelTextEdit()
		}
	}, e.w)
	e.w.Canvas().Focus(entry)
}

// layerPanel lists elements top-most first. Rows move with the arrow buttons,
// which run the same drag-over sequence as a pointer drag in the list.
func (e *editorWindow) layerPanel() fyne.CanvasObject {
	var list *widget.List
	list = widget.NewList(
		func() int { return len(e.st.Rows()) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				container.NewHBox(
					widget.NewButtonWithIcon("", theme.MoveUpIcon(), nil),
					widget.NewButtonWithIcon("", theme.MoveDownIcon(), nil),
					widget.NewButtonWithIcon("", theme.VisibilityIcon(), nil),
					widget.NewCheck("Lock", nil),
				),
				widget.NewLabel(""))
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			rows := e.st.Rows()
			if i >= len(rows) {
				return
			}
			row := rows[i]
			c := o.(*fyne.Container)
			label := c.Objects[0].(*widget.Label)
			btns := c.Objects[1].(*fyne.Container)
			up := btns.Objects[0].(*widget.Button)
			down := btns.Objects[1].(*widget.Button)
			vis := btns.Objects[2].(*widget.Button)
			lock := btns.Objects[3].(*widget.Check)

			text := row.Label
			if row.Selected {
				text = "▸ " + text
			}
			label.SetText(text)
			move := func(to int) {
				if to < 0 || to >= len(e.st.Rows()) || !e.st.BeginLayerDrag(i) {
					return
				}
				e.st.DragOver(to)
				e.st.EndLayerDrag()
			}
			up.OnTapped = func() { move(i - 1) }
			down.OnTapped = func() { move(i + 1) }
			if !row.Hidden {
				vis.SetIcon(theme.VisibilityIcon())
			} else {
				vis.SetIcon(theme.VisibilityOffIcon())
			}
			vis.OnTapped = func() { e.report("visibility", e.st.ToggleVisibility(row.ID)) }
			lock.OnChanged = nil
			lock.SetChecked(row.Locked)
			lock.OnChanged = func(bool) { e.report("lock", e.st.ToggleLock(row.ID)) }
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		rows := e.st.Rows()
		if i < len(rows) {
			e.report("select", e.st.Select(rows[i].ID))
		}
		list.UnselectAll()
	}
	front := widget.NewButton("Bring to front", func() { e.report("bring to front", e.st.BringToFront(e.st.Selected())) })
	back := widget.NewButton("Send to back", func() { e.report("send to back", e.st.SendToBack(e.st.Selected())) })
	return container.NewBorder(widget.NewLabelWithStyle("Layers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2, front, back), nil, nil, list)
}

func (e *editorWindow) report(op string, err error) {
	if err != nil && !errors.Is(err, editor.ErrNotFound) && !errors.Is(err, editor.ErrNoSelection) {
		e.fail(op, err)
	}
}

// propertiesPanel edits the selected element. Entries commit on Enter.
func (e *editorWindow) propertiesPanel() fyne.CanvasObject {
	num := func(set func(float64) error) *widget.Entry {
		en := widget.NewEntry()
		en.OnSubmitted = func(s string) {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				e.fail("property", fmt.Errorf("%q is not a number", s))
				return
			}
			e.report("property", set(v))
		}
		return en
	}
	x, y := num(e.st.SetX), num(e.st.SetY)
	wd, ht := num(e.st.SetWidth), num(e.st.SetHeight)
	rot := num(e.st.SetRotation)
	fs := num(e.st.SetFontSize)
	opacity := widget.NewSlider(0, 100)
	opacity.Step = 1
	opacity.OnChangeEnded = func(v float64) { e.report("opacity", e.st.SetOpacityPercent(v)) }

	str := func(set func(string) error) *widget.Entry {
		en := widget.NewEntry()
		en.OnSubmitted = func(s string) { e.report("property", set(s)) }
		return en
	}
	col, bg := str(e.st.SetColor), str(e.st.SetBackgroundColor)
	content := widget.NewMultiLineEntry()
	apply := widget.NewButton("Apply text", func() { e.report("content", e.st.SetContent(content.Text)) })

	font := widget.NewSelect(design.FontFamilies, func(s string) { e.report("font", e.st.SetFontFamily(s)) })
	bold := widget.NewCheck("Bold", func(on bool) { e.report("bold", e.st.SetBold(on)) })
	italic := widget.NewCheck("Italic", func(on bool) { e.report("italic", e.st.SetItalic(on)) })

	shapeNames := make([]string, len(design.ShapeTypes))
	for i, s := range design.ShapeTypes {
		shapeNames[i] = string(s)
	}
	shape := widget.NewSelect(shapeNames, func(s string) { e.report("shape", e.st.SetShapeType(design.ShapeType(s))) })
	iconNames := make([]string, len(design.Icons))
	for i, n := range design.Icons {
		iconNames[i] = string(n)
	}
	icon := widget.NewSelect(iconNames, func(s string) { e.report("icon", e.st.SetIconName(design.IconName(s))) })

	form := widget.NewForm(
		widget.NewFormItem("X", x), widget.NewFormItem("Y", y),
		widget.NewFormItem("Width", wd), widget.NewFormItem("Height", ht),
		widget.NewFormItem("Rotation", rot), widget.NewFormItem("Opacity", opacity),
		widget.NewFormItem("Color", col), widget.NewFormItem("Background", bg),
	)
	textBox := container.NewVBox(widget.NewForm(
		widget.NewFormItem("Text", content),
		widget.NewFormItem("Font", font),
		widget.NewFormItem("Size", fs),
	), container.NewHBox(bold, italic, apply))
	shapeBox := widget.NewForm(widget.NewFormItem("Shape", shape))
	iconBox := widget.NewForm(widget.NewFormItem("Icon", icon))
	empty := widget.NewLabel("Select an element to edit its properties.")

	// Setting widget values must not feed back into the editor.
	quiet := func(sel *widget.Select, v string) {
		cb := sel.OnChanged
		sel.OnChanged = nil
		sel.SetSelected(v)
		sel.OnChanged = cb
	}
	check := func(c *widget.Check, v bool) {
		cb := c.OnChanged
		c.OnChanged = nil
		c.SetChecked(v)
		c.OnChanged = cb
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	e.refreshProps = func() {
		el, ok := e.st.SelectedElement()
		if !ok {
			empty.Show()
			form.Hide()
			textBox.Hide()
			shapeBox.Hide()
			iconBox.Hide()
			return
		}
		empty.Hide()
		form.Show()
		x.SetText(f(el.X))
		y.SetText(f(el.Y))
		wd.SetText(f(el.Width))
		ht.SetText(f(el.Height))
		rot.SetText(f(el.Rotation))
		if pct, ok := e.st.OpacityPercent(); ok {
			opacity.SetValue(float64(pct))
		}
		col.SetText(el.Color)
		bg.SetText(el.BackgroundColor)
		textBox.Hide()
		shapeBox.Hide()
		iconBox.Hide()
		switch el.Type {
		case design.TypeText:
			content.SetText(el.Content)
			fs.SetText(f(el.FontSize))
			quiet(font, el.FontFamily)
			check(bold, el.IsBold)
			check(italic, el.IsItalic)
			textBox.Show()
		case design.TypeShape:
			quiet(shape, string(el.ShapeType))
			shapeBox.Show()
		case design.TypeIcon:
			quiet(icon, string(el.IconName))
			iconBox.Show()
		}
	}
	e.refreshProps()
	return container.NewVBox(
		widget.NewLabelWithStyle("Properties", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		empty, form, textBox, shapeBox, iconBox,
	)
}
