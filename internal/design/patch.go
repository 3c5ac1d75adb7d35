/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"fmt"
	"math"
)

// Patch is a partial element. Nil fields are "not given": CreateElement
// fills them with defaults and Apply leaves them untouched. It is also the
// wire form used when decoding imported elements so that absent keys can be
// told apart from zero values.
type Patch struct {
	ID              *string      `json:"id,omitempty"`
	Type            *ElementType `json:"type,omitempty"`
	X               *float64     `json:"x,omitempty"`
	Y               *float64     `json:"y,omitempty"`
	Width           *float64     `json:"width,omitempty"`
	Height          *float64     `json:"height,omitempty"`
	Rotation        *float64     `json:"rotation,omitempty"`
	Color           *string      `json:"color,omitempty"`
	BackgroundColor *string      `json:"backgroundColor,omitempty"`
	Opacity         *float64     `json:"opacity,omitempty"`
	Content         *string      `json:"content,omitempty"`
	FontSize        *float64     `json:"fontSize,omitempty"`
	FontFamily      *string      `json:"fontFamily,omitempty"`
	IsBold          *bool        `json:"isBold,omitempty"`
	IsItalic        *bool        `json:"isItalic,omitempty"`
	ShapeType       *ShapeType   `json:"shapeType,omitempty"`
	IconName        *IconName    `json:"iconName,omitempty"`
	ZIndex          *int         `json:"zIndex,omitempty"`
	Locked          *bool        `json:"locked,omitempty"`
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T { return &v }

// CheckFinite rejects NaN and infinite numbers, which JSON cannot carry.
func (p Patch) CheckFinite() error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"x", p.X}, {"y", p.Y}, {"width", p.Width}, {"height", p.Height},
		{"rotation", p.Rotation}, {"opacity", p.Opacity}, {"fontSize", p.FontSize},
	}
	for _, f := range fields {
		if f.v != nil && (math.IsNaN(*f.v) || math.IsInf(*f.v, 0)) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidElement, f.name)
		}
	}
	return nil
}

// Apply copies every given field except id and type onto e.
func (p Patch) Apply(e *Element) {
	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setS := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setB := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setF(&e.X, p.X)
	setF(&e.Y, p.Y)
	setF(&e.Width, p.Width)
	setF(&e.Height, p.Height)
	setF(&e.Rotation, p.Rotation)
	setS(&e.Color, p.Color)
	setS(&e.BackgroundColor, p.BackgroundColor)
	setF(&e.Opacity, p.Opacity)
	setS(&e.Content, p.Content)
	setF(&e.FontSize, p.FontSize)
	setS(&e.FontFamily, p.FontFamily)
	setB(&e.IsBold, p.IsBold)
	setB(&e.IsItalic, p.IsItalic)
	if p.ShapeType != nil {
		e.ShapeType = *p.ShapeType
	}
	if p.IconName != nil {
		e.IconName = *p.IconName
	}
	if p.ZIndex != nil {
		e.ZIndex = *p.ZIndex
	}
	setB(&e.Locked, p.Locked)
}

// PatchOf returns a patch that sets every field of e, id and type included.
func PatchOf(e Element) Patch {
	return Patch{
		ID: Ptr(e.ID), Type: Ptr(e.Type),
		X: Ptr(e.X), Y: Ptr(e.Y), Width: Ptr(e.Width), Height: Ptr(e.Height), Rotation: Ptr(e.Rotation),
		Color: Ptr(e.Color), BackgroundColor: Ptr(e.BackgroundColor), Opacity: Ptr(e.Opacity),
		Content: Ptr(e.Content), FontSize: Ptr(e.FontSize), FontFamily: Ptr(e.FontFamily),
		IsBold: Ptr(e.IsBold), IsItalic: Ptr(e.IsItalic),
		ShapeType: Ptr(e.ShapeType), IconName: Ptr(e.IconName),
		ZIndex: Ptr(e.ZIndex), Locked: Ptr(e.Locked),
	}
}
