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

	"github.com/google/uuid"
)

const (
	DefaultFontFamily = "Arial"
	DefaultFontSize   = 16
	DefaultTextColor  = "#000000"
	DefaultText       = "Double-click to edit"
	Transparent       = "transparent"
)

// NewID returns a fresh element or design id.
func NewID() string { return uuid.NewString() }

// Defaults returns the template for a new element of type t (without id).
func Defaults(t ElementType) Element {
	e := Element{
		Type:            t,
		X:               100,
		Y:               100,
		Width:           200,
		Height:          200,
		Color:           DefaultTextColor,
		BackgroundColor: Transparent,
		Opacity:         1,
		FontSize:        DefaultFontSize,
		FontFamily:      DefaultFontFamily,
	}
	switch t {
	case TypeText:
		e.Height = 50
		e.Content = DefaultText
	case TypeShape:
		e.BackgroundColor = "#FFFFFF"
		e.ShapeType = ShapeRectangle
	case TypeIcon:
		e.Width, e.Height = 48, 48
		e.IconName = IconStar
	case TypeLine:
		e.Height = 2
		e.BackgroundColor = DefaultTextColor
	}
	return e
}

// CreateElement builds a fully populated element from a partial one. Missing
// attributes take the defaults of the element's type and a missing id is
// generated. The patch itself is never modified.
func CreateElement(p Patch) (Element, error) {
	if p.Type == nil || *p.Type == "" {
		return Element{}, fmt.Errorf("%w: missing type", ErrInvalidElement)
	}
	t := *p.Type
	if !t.Valid() {
		return Element{}, fmt.Errorf("%w: unknown type %q", ErrInvalidElement, t)
	}
	if err := p.CheckFinite(); err != nil {
		return Element{}, err
	}
	e := Defaults(t)
	p.Apply(&e)

	if p.ShapeType != nil && *p.ShapeType != "" && !p.ShapeType.Valid() {
		return Element{}, fmt.Errorf("%w: unknown shape %q", ErrInvalidElement, *p.ShapeType)
	}
	if t == TypeShape && e.ShapeType == "" {
		e.ShapeType = ShapeRectangle
	}
	if p.IconName != nil && *p.IconName != "" {
		n, err := ParseIcon(string(*p.IconName))
		if err != nil {
			return Element{}, err
		}
		e.IconName = n
	}
	if t == TypeIcon && e.IconName == "" {
		e.IconName = IconStar
	}

	if p.ID != nil && *p.ID != "" {
		e.ID = *p.ID
	} else {
		e.ID = NewID()
	}
	return e, nil
}

// MustCreate is CreateElement for literals known to be valid.
func MustCreate(p Patch) Element {
	e, err := CreateElement(p)
	if err != nil {
		panic(err)
	}
	return e
}

// New returns a default element of type t with a fresh id.
func New(t ElementType) Element {
	return MustCreate(Patch{Type: &t})
}
