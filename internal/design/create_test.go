/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"errors"
	"testing"
)

func TestCreateElementTextDefaults(t *testing.T) {
	e, err := CreateElement(Patch{Type: Ptr(TypeText)})
	if err != nil {
		t.Fatalf("CreateElement: %v", err)
	}
	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if e.Type != TypeText || e.Width != 200 || e.Height != 50 || e.FontSize != 16 ||
		e.FontFamily != "Arial" || e.Color != "#000000" || e.Opacity != 1 {
		t.Fatalf("unexpected text defaults: %+v", e)
	}
	if e.BackgroundColor != Transparent {
		t.Fatalf("text background = %q, want transparent", e.BackgroundColor)
	}
}

func TestCreateElementShapeDefaults(t *testing.T) {
	e := New(TypeShape)
	if e.Width != 200 || e.Height != 200 || e.BackgroundColor != "#FFFFFF" || e.ShapeType != ShapeRectangle {
		t.Fatalf("unexpected shape defaults: %+v", e)
	}
}

func TestCreateElementKeepsGivenFieldsAndDoesNotMutateInput(t *testing.T) {
	p := Patch{Type: Ptr(TypeShape), ShapeType: Ptr(ShapeCircle), X: Ptr(0.0), Opacity: Ptr(0.0), ZIndex: Ptr(-3)}
	before := p
	e, err := CreateElement(p)
	if err != nil {
		t.Fatalf("CreateElement: %v", err)
	}
	if e.X != 0 || e.Opacity != 0 || e.ZIndex != -3 || e.ShapeType != ShapeCircle {
		t.Fatalf("given zero values must survive: %+v", e)
	}
	if p.ID != nil || p != before {
		t.Fatalf("patch was modified: %+v", p)
	}
}

func TestCreateElementKeepsID(t *testing.T) {
	e, err := CreateElement(Patch{ID: Ptr("fixed"), Type: Ptr(TypeLine)})
	if err != nil || e.ID != "fixed" {
		t.Fatalf("id = %q, err = %v", e.ID, err)
	}
	if e.Height != 2 || e.BackgroundColor != "#000000" {
		t.Fatalf("unexpected line defaults: %+v", e)
	}
}

func TestCreateElementRejectsUnknownValues(t *testing.T) {
	cases := map[string]Patch{
		"missing type":  {},
		"unknown type":  {Type: Ptr(ElementType("video"))},
		"unknown shape": {Type: Ptr(TypeShape), ShapeType: Ptr(ShapeType("pentagon"))},
		"unknown icon":  {Type: Ptr(TypeIcon), IconName: Ptr(IconName("Rocket"))},
	}
	for name, p := range cases {
		if _, err := CreateElement(p); !errors.Is(err, ErrInvalidElement) {
			t.Fatalf("%s: err = %v, want ErrInvalidElement", name, err)
		}
	}
}

func TestCreateElementNormalizesLegacyIconNames(t *testing.T) {
	e, err := CreateElement(Patch{Type: Ptr(TypeIcon), IconName: Ptr(IconName("ArrowRight"))})
	if err != nil {
		t.Fatalf("CreateElement: %v", err)
	}
	if e.IconName != IconArrowRight {
		t.Fatalf("icon = %q", e.IconName)
	}
	if d := New(TypeIcon); d.IconName != IconStar || d.Width != 48 {
		t.Fatalf("unexpected icon defaults: %+v", d)
	}
}

func TestEveryIconHasAnOutline(t *testing.T) {
	for _, n := range Icons {
		e := New(TypeIcon)
		e.IconName = n
		if b := e.Outline().Bounds(); b.W <= 0 || b.H <= 0 {
			t.Fatalf("icon %q has empty outline", n)
		}
	}
}

func TestLabel(t *testing.T) {
	e := New(TypeText)
	e.Content = "A fairly long headline for the banner"
	if got := e.Label(); got != "Text: A fairly long headl..." {
		t.Fatalf("label = %q", got)
	}
	if got := New(TypeShape).Label(); got != "Shape: rectangle" {
		t.Fatalf("label = %q", got)
	}
}
