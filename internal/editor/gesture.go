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

// GestureKind identifies the pointer gesture in progress.
type GestureKind string

const (
	GestureNone   GestureKind = ""
	GestureDrag   GestureKind = "drag"
	GestureResize GestureKind = "resize"
	GestureRotate GestureKind = "rotate"
)

type gesture struct {
	kind   GestureKind
	id     string
	handle Handle
	start  vector.Pt // screen
	offset vector.Pt // canvas, pointer minus element origin
	startW float64
	startH float64
	center vector.Pt // screen
	before []byte
	remove []func()
}

// Document returns the listener registry gestures attach to.
func (s *State) Document() *Document { return s.doc }

// ActiveGesture reports the gesture in progress and the element it moves.
func (s *State) ActiveGesture() (GestureKind, string) {
	if s.gesture == nil {
		return GestureNone, ""
	}
	return s.gesture.kind, s.gesture.id
}

// PointerMove forwards a pointer move to the document listeners.
func (s *State) PointerMove(screen vector.Pt) {
	s.doc.Dispatch(PointerMove, PointerEvent{X: screen.X, Y: screen.Y})
}

// PointerUp forwards a pointer release to the document listeners.
func (s *State) PointerUp(screen vector.Pt) {
	s.doc.Dispatch(PointerUp, PointerEvent{X: screen.X, Y: screen.Y})
}

// PointerDown routes a press on the canvas: a handle of the selected element
// starts a resize or rotation, an element body is selected and starts a drag,
// and empty canvas clears the selection. It reports whether a gesture began.
func (s *State) PointerDown(screen vector.Pt) bool {
	if h, ok := s.handleAt(screen); ok {
		if h == HandleRotate {
			return s.BeginRotate(s.selected, screen)
		}
		return s.BeginResize(s.selected, h, screen)
	}
	e, ok := s.HitTest(s.ToCanvas(screen))
	if !ok {
		s.ClearSelection()
		return false
	}
	_ = s.Select(e.ID)
	return s.BeginDrag(e.ID, screen)
}

// startable returns the element for a new gesture, or false for unknown and
// locked elements.
func (s *State) startable(id string) (design.Element, bool) {
	e, ok := s.Element(id)
	if !ok || e.Locked {
		return design.Element{}, false
	}
	s.endGesture()
	return e, true
}

// BeginDrag starts moving element id from the screen point.
func (s *State) BeginDrag(id string, screen vector.Pt) bool {
	e, ok := s.startable(id)
	if !ok {
		return false
	}
	p := s.ToCanvas(screen)
	g := &gesture{kind: GestureDrag, id: id, start: screen, offset: vector.Pt{X: p.X - e.X, Y: p.Y - e.Y}}
	s.attach(g)
	return true
}

// BeginResize starts a resize from handle h. Only the south-east handle
// resizes; the other handles start nothing.
func (s *State) BeginResize(id string, h Handle, screen vector.Pt) bool {
	if h != HandleSE {
		return false
	}
	e, ok := s.startable(id)
	if !ok {
		return false
	}
	g := &gesture{kind: GestureResize, id: id, handle: h, start: screen, startW: e.Width, startH: e.Height}
	s.attach(g)
	return true
}

// BeginRotate starts rotating element id about its center.
func (s *State) BeginRotate(id string, screen vector.Pt) bool {
	e, ok := s.startable(id)
	if !ok {
		return false
	}
	g := &gesture{kind: GestureRotate, id: id, handle: HandleRotate, start: screen, center: s.ToScreen(e.Frame().Center())}
	s.attach(g)
	return true
}

func (s *State) attach(g *gesture) {
	g.before = s.capture()
	s.gesture = g
	g.remove = []func(){
		s.doc.Listen(PointerMove, func(ev PointerEvent) { s.moveGesture(g, vector.Pt{X: ev.X, Y: ev.Y}) }),
		s.doc.Listen(PointerUp, func(PointerEvent) { s.endGesture() }),
	}
	s.changed()
}

func (s *State) moveGesture(g *gesture, screen vector.Pt) {
	if s.gesture != g {
		return
	}
	i := s.index(g.id)
	if i < 0 {
		s.endGesture()
		return
	}
	e := &s.design.Elements[i]
	switch g.kind {
	case GestureDrag:
		p := s.ToCanvas(screen)
		e.X = p.X - g.offset.X
		e.Y = p.Y - g.offset.Y
		if s.snap != nil {
			s.snapElement(e)
		}
	case GestureResize:
		dx := (screen.X - g.start.X) / s.zoom
		dy := (screen.Y - g.start.Y) / s.zoom
		e.Width = math.Max(design.MinElementSide, g.startW+dx)
		e.Height = math.Max(design.MinElementSide, g.startH+dy)
	case GestureRotate:
		a := vector.Degrees(math.Atan2(screen.Y-g.center.Y, screen.X-g.center.X)) + 90
		e.Rotation = vector.NormalizeDegrees(a)
	}
	s.changed()
}

// endGesture detaches the gesture listeners and records one undo step for the
// whole gesture.
func (s *State) endGesture() {
	g := s.gesture
	if g == nil {
		return
	}
	s.gesture = nil
	s.guides = nil
	for _, rm := range g.remove {
		rm()
	}
	s.record(string(g.kind), g.before)
	s.changed()
}

func (s *State) cancelInteractions() {
	s.endGesture()
	s.CommitTextEdit()
	s.layerDrag = -1
	s.layerDragID = ""
}

// snapElement aligns the rotated bounds of e with the canvas and the other
// visible elements, moving e by the snap delta.
func (s *State) snapElement(e *design.Element) {
	m := s.design.Metadata
	anchors := []vector.Anchor{{Rect: vector.R(0, 0, float64(m.Width), float64(m.Height)), Weight: 2}}
	for _, o := range s.design.Elements {
		if o.ID != e.ID && !o.Hidden() {
			anchors = append(anchors, vector.Anchor{Rect: o.Frame().Bounds(), Weight: 1})
		}
	}
	b := e.Frame().Bounds()
	snapped, guides := vector.ComputeSmartGuides(b, anchors, *s.snap)
	e.X += snapped.X - b.X
	e.Y += snapped.Y - b.Y
	s.guides = guides
}

// Guides returns the smart guides of the drag in progress, in canvas space.
func (s *State) Guides() []vector.GuideLine { return s.guides }
