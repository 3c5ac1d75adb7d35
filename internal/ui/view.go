/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"adnate/internal/config"
	"adnate/internal/design"
	"adnate/internal/editor"
	"adnate/internal/export"
	"adnate/internal/undo"
	"adnate/internal/vector"

	"github.com/fogleman/gg"
)

var (
	viewBackground = color.NRGBA{R: 0xF3, G: 0xF4, B: 0xF6, A: 0xFF}
	selectionColor = color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF}
	lockedColor    = color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}
	guideColor     = color.NRGBA{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF}
)

// HistoryFor builds the undo manager configured by the editor section.
func HistoryFor(cfg config.EditorConfig) *undo.Manager {
	return undo.NewManager(undo.Config{
		MaxBytes:    int(cfg.UndoMaxBytes),
		MaxPerKey:   cfg.UndoMaxPerDesign,
		MinInterval: cfg.CoalesceWindow(),
	})
}

// EditorOptions builds the editor session options from the editor section:
// undo caps and, when a threshold is set, smart guides.
func EditorOptions(cfg config.EditorConfig) editor.Options {
	opts := editor.Options{History: HistoryFor(cfg)}
	if cfg.SnapThreshold > 0 {
		opts.Snap = &vector.SnapOptions{Threshold: cfg.SnapThreshold, SnapToEdges: true, SnapToCenters: true}
	}
	return opts
}

// CenterCanvas places the design in the middle of a viewport of w x h
// screen units at the current zoom.
func CenterCanvas(st *editor.State, w, h float64) {
	m := st.Metadata()
	z := st.Zoom()
	st.SetViewportOrigin(vector.Pt{
		X: math.Round((w - float64(m.Width)*z) / 2),
		Y: math.Round((h - float64(m.Height)*z) / 2),
	})
}

// RenderView paints the editor viewport: the design at the current zoom and
// viewport origin, then the selection outline and handles. pixelScale maps
// screen units to output pixels (HiDPI).
func RenderView(st *editor.State, w, h int, pixelScale float64, fonts *export.FontLibrary) image.Image {
	if pixelScale <= 0 {
		pixelScale = 1
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(viewBackground)
	dc.Clear()

	scale := st.Zoom() * pixelScale
	if page, err := export.Render(st.Design(), export.Options{Scale: scale, Fonts: fonts}); err == nil {
		o := st.ToScreen(vector.Pt{})
		at := image.Pt(int(math.Round(o.X*pixelScale)), int(math.Round(o.Y*pixelScale)))
		dst := dc.Image().(*image.RGBA)
		draw.Draw(dst, page.Bounds().Add(at), page, image.Point{}, draw.Over)
	}

	dc.Scale(pixelScale, pixelScale)
	if e, ok := st.SelectedElement(); ok {
		drawSelection(dc, st, e)
	}
	for _, g := range st.Guides() {
		a, b := st.ToScreen(g.From), st.ToScreen(g.To)
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
		dc.SetColor(guideColor)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
	return dc.Image()
}

func drawSelection(dc *gg.Context, st *editor.State, e design.Element) {
	corners := e.Frame().Corners()
	dc.NewSubPath()
	for i, c := range corners {
		p := st.ToScreen(c)
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
		} else {
			dc.LineTo(p.X, p.Y)
		}
	}
	dc.ClosePath()
	dc.SetLineWidth(1.5)
	if e.Locked {
		dc.SetColor(lockedColor)
		dc.SetDash(4, 3)
		dc.Stroke()
		dc.SetDash()
		return
	}
	dc.SetColor(selectionColor)
	dc.Stroke()
	for _, hp := range st.Handles(e.ID) {
		dc.DrawCircle(hp.At.X, hp.At.Y, editor.HandleRadius-2)
		dc.SetColor(color.White)
		dc.FillPreserve()
		dc.SetColor(selectionColor)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
}
