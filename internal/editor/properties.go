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
	"math"

	"adnate/internal/design"
)

// The setters below edit the selected element and return ErrNoSelection when
// nothing is selected. Out-of-range numbers are clamped; NaN and infinite
// positions or sizes are rejected by UpdateElement.

func (s *State) editSelected(p design.Patch) error {
	if s.selected == "" {
		return ErrNoSelection
	}
	return s.UpdateElement(s.selected, p)
}

func (s *State) SetX(v float64) error { return s.editSelected(design.Patch{X: &v}) }
func (s *State) SetY(v float64) error { return s.editSelected(design.Patch{Y: &v}) }

func (s *State) SetWidth(v float64) error {
	return s.editSelected(design.Patch{Width: design.Ptr(math.Max(design.MinElementSide, v))})
}

func (s *State) SetHeight(v float64) error {
	return s.editSelected(design.Patch{Height: design.Ptr(math.Max(design.MinElementSide, v))})
}

// SetRotation stores v clamped to [0, 360]. Unlike the rotate gesture it does
// not wrap, so 360 is kept.
func (s *State) SetRotation(v float64) error {
	return s.editSelected(design.Patch{Rotation: design.Ptr(clamp(v, 0, 360))})
}

func (s *State) SetOpacity(v float64) error {
	return s.editSelected(design.Patch{Opacity: design.Ptr(clamp(v, 0, 1))})
}

// SetOpacityPercent takes the 0..100 value shown in the panel.
func (s *State) SetOpacityPercent(pct float64) error { return s.SetOpacity(pct / 100) }

// OpacityPercent returns the selected element's opacity as shown in the panel.
func (s *State) OpacityPercent() (int, bool) {
	e, ok := s.SelectedElement()
	if !ok {
		return 0, false
	}
	return int(math.Round(e.Opacity * 100)), true
}

func (s *State) SetFontSize(v float64) error {
	return s.editSelected(design.Patch{FontSize: design.Ptr(clamp(math.Round(v), design.MinFontSize, design.MaxFontSize))})
}

// SetFontFamily accepts one of design.FontFamilies; anything else falls back
// to the default family.
func (s *State) SetFontFamily(f string) error {
	return s.editSelected(design.Patch{FontFamily: design.Ptr(design.SafeFont(f))})
}

func (s *State) SetBold(on bool) error   { return s.editSelected(design.Patch{IsBold: &on}) }
func (s *State) SetItalic(on bool) error { return s.editSelected(design.Patch{IsItalic: &on}) }

// SetColor sets the foreground color. Invalid values leave the element as is.
func (s *State) SetColor(c string) error {
	if !design.ValidColor(c) {
		return fmt.Errorf("%w: color %q", design.ErrInvalidElement, c)
	}
	return s.editSelected(design.Patch{Color: &c})
}

// SetBackgroundColor sets the fill color. Invalid values leave the element as is.
func (s *State) SetBackgroundColor(c string) error {
	if !design.ValidColor(c) {
		return fmt.Errorf("%w: background color %q", design.ErrInvalidElement, c)
	}
	return s.editSelected(design.Patch{BackgroundColor: &c})
}

// SetContent replaces the text content, truncated to design.MaxContentLen runes.
func (s *State) SetContent(v string) error {
	if r := []rune(v); len(r) > design.MaxContentLen {
		v = string(r[:design.MaxContentLen])
	}
	return s.editSelected(design.Patch{Content: &v})
}

func (s *State) SetShapeType(t design.ShapeType) error {
	return s.editSelected(design.Patch{ShapeType: &t})
}

func (s *State) SetIconName(n design.IconName) error {
	return s.editSelected(design.Patch{IconName: &n})
}

func (s *State) SetZIndex(z int) error { return s.editSelected(design.Patch{ZIndex: &z}) }

// Duplicate copies the selected element with a new id, offset by 20 units,
// appends it to the list and selects the copy. The zIndex is copied as is.
func (s *State) Duplicate() (design.Element, error) {
	src, ok := s.SelectedElement()
	if !ok {
		return design.Element{}, ErrNoSelection
	}
	dup := src
	dup.ID = design.NewID()
	dup.X += 20
	dup.Y += 20
	s.mutate("duplicate", func() {
		s.design.Elements = append(s.design.Elements, dup)
		s.selected = dup.ID
	})
	return dup, nil
}

// Delete removes the selected element.
func (s *State) Delete() error {
	if s.selected == "" {
		return ErrNoSelection
	}
	return s.DeleteElement(s.selected)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
