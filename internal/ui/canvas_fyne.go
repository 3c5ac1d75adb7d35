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
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"adnate/internal/editor"
	"adnate/internal/export"
	"adnate/internal/vector"
)

// DesignCanvas shows an editor session and turns mouse input into editor
// gestures. The scroll wheel zooms.
type DesignCanvas struct {
	widget.BaseWidget

	st       *editor.State
	fonts    *export.FontLibrary
	centered bool
	lastSize fyne.Size

	// OnTextEdit runs after a double click opened an inline text edit.
	OnTextEdit func(editor.TextEdit)
}

func NewDesignCanvas(st *editor.State, fonts *export.FontLibrary) *DesignCanvas {
	c := &DesignCanvas{st: st, fonts: fonts}
	c.ExtendBaseWidget(c)
	return c
}

// SetState swaps the session shown, e.g. after opening another file.
func (c *DesignCanvas) SetState(st *editor.State) {
	c.st = st
	c.centered = false
	c.Refresh()
}

// Recenter puts the design back in the middle of the widget.
func (c *DesignCanvas) Recenter() {
	c.centered = false
	c.Refresh()
}

func (c *DesignCanvas) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewRaster(func(w, h int) image.Image {
		size := c.Size()
		scale := 1.0
		if size.Width > 0 {
			scale = float64(w) / float64(size.Width)
		}
		if !c.centered || size != c.lastSize {
			CenterCanvas(c.st, float64(size.Width), float64(size.Height))
			c.centered = true
			c.lastSize = size
		}
		return RenderView(c.st, w, h, scale, c.fonts)
	})
	return widget.NewSimpleRenderer(raster)
}

func (c *DesignCanvas) MinSize() fyne.Size { return fyne.NewSize(480, 360) }

func toPt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

func (c *DesignCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.st.PointerDown(toPt(e.Position))
	c.Refresh()
}

func (c *DesignCanvas) MouseUp(e *desktop.MouseEvent) {
	c.st.PointerUp(toPt(e.Position))
	c.Refresh()
}

func (c *DesignCanvas) Dragged(e *fyne.DragEvent) {
	c.st.PointerMove(toPt(e.Position))
	c.Refresh()
}

func (c *DesignCanvas) DragEnd() {
	if kind, _ := c.st.ActiveGesture(); kind != editor.GestureNone {
		c.st.PointerUp(vector.Pt{})
	}
	c.Refresh()
}

func (c *DesignCanvas) DoubleTapped(e *fyne.PointEvent) {
	if !c.st.DoubleClick(toPt(e.Position)) {
		return
	}
	if te, ok := c.st.TextEditing(); ok && c.OnTextEdit != nil {
		c.OnTextEdit(te)
	}
	c.Refresh()
}

func (c *DesignCanvas) Scrolled(e *fyne.ScrollEvent) {
	switch {
	case e.Scrolled.DY > 0:
		c.st.ZoomIn()
	case e.Scrolled.DY < 0:
		c.st.ZoomOut()
	default:
		return
	}
	c.centered = false
	c.Refresh()
}
