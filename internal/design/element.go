/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package design defines the design document: typed canvas elements, the
// canvas metadata and their JSON form.
package design

import (
	"errors"
	"fmt"
	"sort"

	"adnate/internal/vector"
)

var (
	// ErrInvalidElement reports an element with an unknown type, shape or icon.
	ErrInvalidElement = errors.New("invalid element")
	// ErrMalformedDocument reports import text that is not a design document.
	ErrMalformedDocument = errors.New("malformed design document")
)

type ElementType string

const (
	TypeText  ElementType = "text"
	TypeImage ElementType = "image"
	TypeShape ElementType = "shape"
	TypeIcon  ElementType = "icon"
	TypeLine  ElementType = "line"
)

// ElementTypes lists the supported types in palette order.
var ElementTypes = []ElementType{TypeText, TypeImage, TypeShape, TypeIcon, TypeLine}

func (t ElementType) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeShape, TypeIcon, TypeLine:
		return true
	}
	return false
}

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeTriangle  ShapeType = "triangle"
	ShapeHexagon   ShapeType = "hexagon"
	ShapeStar      ShapeType = "star"
	ShapeHeart     ShapeType = "heart"
	ShapeMessage   ShapeType = "message"
)

var ShapeTypes = []ShapeType{ShapeRectangle, ShapeCircle, ShapeTriangle, ShapeHexagon, ShapeStar, ShapeHeart, ShapeMessage}

func (s ShapeType) Valid() bool {
	for _, v := range ShapeTypes {
		if v == s {
			return true
		}
	}
	return false
}

// Element is one visual primitive on the canvas. Geometry is in unzoomed
// canvas pixels; x/y is the top-left corner before rotation.
type Element struct {
	ID              string      `json:"id"`
	Type            ElementType `json:"type"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	Width           float64     `json:"width"`
	Height          float64     `json:"height"`
	Rotation        float64     `json:"rotation"`
	Color           string      `json:"color"`
	BackgroundColor string      `json:"backgroundColor"`
	Opacity         float64     `json:"opacity"`
	Content         string      `json:"content"`
	FontSize        float64     `json:"fontSize"`
	FontFamily      string      `json:"fontFamily"`
	IsBold          bool        `json:"isBold"`
	IsItalic        bool        `json:"isItalic"`
	ShapeType       ShapeType   `json:"shapeType,omitempty"`
	IconName        IconName    `json:"iconName,omitempty"`
	ZIndex          int         `json:"zIndex"`
	Locked          bool        `json:"locked"`
}

// Frame returns the element's box and rotation.
func (e Element) Frame() vector.Frame {
	return vector.Frame{Rect: vector.R(e.X, e.Y, e.Width, e.Height), Rotation: e.Rotation}
}

// Outline returns the fill outline for shape, icon and line elements.
// Text and image elements paint their plain box.
func (e Element) Outline() vector.Path {
	r := vector.R(e.X, e.Y, e.Width, e.Height)
	name := "rectangle"
	switch e.Type {
	case TypeShape:
		if e.ShapeType != "" {
			name = string(e.ShapeType)
		}
	case TypeIcon:
		name = string(e.IconName)
	}
	if p, ok := vector.ShapePath(name, r); ok {
		return p
	}
	p, _ := vector.ShapePath("rectangle", r)
	return p
}

// Hidden reports whether the element is hidden through the layer panel.
func (e Element) Hidden() bool { return e.Opacity == 0 }

// Label is the short description shown in layer rows.
func (e Element) Label() string {
	switch e.Type {
	case TypeText:
		r := []rune(e.Content)
		if len(r) > 20 {
			return "Text: " + string(r[:20]) + "..."
		}
		return "Text: " + e.Content
	case TypeShape:
		return fmt.Sprintf("Shape: %s", e.ShapeType)
	case TypeImage:
		return "Image"
	case TypeIcon:
		return fmt.Sprintf("Icon: %s", e.IconName)
	case TypeLine:
		return "Line"
	default:
		return "Element"
	}
}

// PaintOrder returns a copy of elements sorted by zIndex ascending. Equal
// zIndex values keep list order.
func PaintOrder(elements []Element) []Element {
	out := append([]Element(nil), elements...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}
