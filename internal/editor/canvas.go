/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"

	"adnate/internal/design"
	"adnate/internal/vector"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 2.0
	ZoomStep = 0.1

	// HandleRadius is the pointer tolerance around a handle, in screen pixels.
	HandleRadius = 6.0
	// RotateHandleOffset is how far above the top edge the rotation handle
	// sits, in screen pixels.
	RotateHandleOffset = 24.0
)

// Handle names a selection handle.
type Handle string

const (
	HandleNW     Handle = "nw"
	HandleN      Handle = "n"
	HandleNE     Handle = "ne"
	HandleE      Handle = "e"
	HandleSE     Handle = "se"
	HandleS      Handle = "s"
	HandleSW     Handle = "sw"
	HandleW      Handle = "w"
	HandleRotate Handle = "rotate"
)

// HandlePos is a handle position in screen space.
type HandlePos struct {
	Handle Handle
	At     vector.Pt
}

// Zoom returns the current zoom factor.
func (s *State) Zoom() float64 { return s.zoom }

// SetZoom clamps z to [MinZoom, MaxZoom] and rounds it to one decimal.
func (s *State) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	z = math.Max(MinZoom, math.Min(MaxZoom, z))
	z = math.Round(z*10) / 10
	if z != s.zoom {
		s.zoom = z
		s.changed()
	}
}

func (s *State) ZoomIn()  { s.SetZoom(s.zoom + ZoomStep) }
func (s *State) ZoomOut() { s.SetZoom(s.zoom - ZoomStep) }

// SetViewportOrigin sets where canvas (0,0) lands in screen space.
func (s *State) SetViewportOrigin(p vector.Pt) { s.origin = p }

// ToScreen maps a canvas point to screen pixels.
func (s *State) ToScreen(p vector.Pt) vector.Pt {
	return vector.Pt{X: s.origin.X + p.X*s.zoom, Y: s.origin.Y + p.Y*s.zoom}
}

// ToCanvas maps a screen point to canvas units.
func (s *State) ToCanvas(p vector.Pt) vector.Pt {
	return vector.Pt{X: (p.X - s.origin.X) / s.zoom, Y: (p.Y - s.origin.Y) / s.zoom}
}

// PaintOrder returns the elements sorted by zIndex ascending. Equal zIndex
// values keep list order.
func (s *State) PaintOrder() []design.Element { return design.PaintOrder(s.design.Elements) }

// HitTest returns the top-most element whose rotated box contains p
// (canvas space).
func (s *State) HitTest(p vector.Pt) (design.Element, bool) {
	order := s.PaintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		if order[i].Frame().Hit(p) {
			return order[i], true
		}
	}
	return design.Element{}, false
}

// Click selects the top-most element under the screen point, or clears the
// selection when the click lands on empty canvas. It returns the selected id.
func (s *State) Click(screen vector.Pt) string {
	if e, ok := s.HitTest(s.ToCanvas(screen)); ok {
		_ = s.Select(e.ID)
		return e.ID
	}
	s.ClearSelection()
	return ""
}

// Handles returns the selection handles of element id in screen space.
func (s *State) Handles(id string) []HandlePos {
	e, ok := s.Element(id)
	if !ok {
		return nil
	}
	f := e.Frame()
	m := f.Transform()
	x0, y0, x1, y1 := f.X, f.Y, f.X+f.W, f.Y+f.H
	cx, cy := f.X+f.W/2, f.Y+f.H/2
	at := func(x, y float64) vector.Pt { return s.ToScreen(m.Apply(vector.Pt{X: x, Y: y})) }
	return []HandlePos{
		{HandleNW, at(x0, y0)},
		{HandleN, at(cx, y0)},
		{HandleNE, at(x1, y0)},
		{HandleE, at(x1, cy)},
		{HandleSE, at(x1, y1)},
		{HandleS, at(cx, y1)},
		{HandleSW, at(x0, y1)},
		{HandleW, at(x0, cy)},
		{HandleRotate, at(cx, y0-RotateHandleOffset/s.zoom)},
	}
}

// handleAt returns the handle of the selected element under the screen point.
func (s *State) handleAt(screen vector.Pt) (Handle, bool) {
	if s.selected == "" {
		return "", false
	}
	for _, h := range s.Handles(s.selected) {
		if vector.Distance(h.At, screen) <= HandleRadius {
			return h.Handle, true
		}
	}
	return "", false
}

// ElementCenter returns the element's center in screen space.
func (s *State) ElementCenter(id string) (vector.Pt, bool) {
	e, ok := s.Element(id)
	if !ok {
		return vector.Pt{}, false
	}
	return s.ToScreen(e.Frame().Center()), true
}
