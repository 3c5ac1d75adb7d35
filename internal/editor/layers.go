/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"

	"adnate/internal/design"
)

// LayerRow is one row of the layer panel.
type LayerRow struct {
	ID       string
	Label    string
	Type     design.ElementType
	ZIndex   int
	Hidden   bool
	Locked   bool
	Selected bool
}

// Rows lists the layers top-most first: descending zIndex, later list
// entries first on ties.
func (s *State) Rows() []LayerRow {
	order := s.PaintOrder()
	rows := make([]LayerRow, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		e := order[i]
		rows = append(rows, LayerRow{
			ID:       e.ID,
			Label:    e.Label(),
			Type:     e.Type,
			ZIndex:   e.ZIndex,
			Hidden:   e.Hidden(),
			Locked:   e.Locked,
			Selected: e.ID == s.selected,
		})
	}
	return rows
}

// BeginLayerDrag starts dragging the layer at row.
func (s *State) BeginLayerDrag(row int) bool {
	rows := s.Rows()
	if row < 0 || row >= len(rows) {
		return false
	}
	s.layerDrag = row
	s.layerDragID = rows[row].ID
	s.layerPrev = s.capture()
	return true
}

// DragOver moves the dragged element to the list position of the element
// under row and makes row the new drag index. The list is rearranged live;
// zIndex values are left as they are. The dragged element is followed by id,
// since rows with distinct zIndex keep their order after a splice.
func (s *State) DragOver(row int) {
	if s.layerDragID == "" {
		return
	}
	rows := s.Rows()
	if row < 0 || row >= len(rows) {
		return
	}
	s.layerDrag = row
	if rows[row].ID == s.layerDragID {
		return
	}
	from := s.index(s.layerDragID)
	to := s.index(rows[row].ID)
	if from < 0 || to < 0 {
		return
	}
	e := s.design.Elements[from]
	els := append(s.design.Elements[:from:from], s.design.Elements[from+1:]...)
	els = append(els[:to:to], append([]design.Element{e}, els[to:]...)...)
	s.design.Elements = els
	s.changed()
}

// EndLayerDrag finishes a layer drag and records it as one undo step.
func (s *State) EndLayerDrag() {
	if s.layerDragID == "" {
		return
	}
	s.layerDrag = -1
	s.layerDragID = ""
	s.record("reorder layers", s.layerPrev)
	s.layerPrev = nil
	s.changed()
}

// LayerDragID returns the id of the element being dragged in the layer panel.
func (s *State) LayerDragID() string { return s.layerDragID }

// LayerDragRow returns the row being dragged, or -1.
func (s *State) LayerDragRow() int { return s.layerDrag }

// ToggleVisibility hides a visible element by setting its opacity to 0 and
// shows a hidden one at full opacity. The previous opacity is not kept.
func (s *State) ToggleVisibility(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("toggle visibility %q: %w", id, ErrNotFound)
	}
	s.mutate("toggle visibility", func() {
		e := &s.design.Elements[i]
		if e.Opacity == 0 {
			e.Opacity = 1
		} else {
			e.Opacity = 0
		}
	})
	return nil
}

// ToggleLock flips the locked flag.
func (s *State) ToggleLock(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("toggle lock %q: %w", id, ErrNotFound)
	}
	s.mutate("toggle lock", func() { s.design.Elements[i].Locked = !s.design.Elements[i].Locked })
	return nil
}

// BringToFront puts id above every other element.
func (s *State) BringToFront(id string) error {
	return s.setZ(id, "bring to front", func(lo, hi int) int { return hi + 1 })
}

// SendToBack puts id below every other element.
func (s *State) SendToBack(id string) error {
	return s.setZ(id, "send to back", func(lo, hi int) int { return lo - 1 })
}

func (s *State) setZ(id, label string, pick func(lo, hi int) int) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%s %q: %w", label, id, ErrNotFound)
	}
	lo, hi := s.design.Elements[0].ZIndex, s.design.Elements[0].ZIndex
	for _, e := range s.design.Elements[1:] {
		lo = min(lo, e.ZIndex)
		hi = max(hi, e.ZIndex)
	}
	s.mutate(label, func() { s.design.Elements[i].ZIndex = pick(lo, hi) })
	return nil
}
