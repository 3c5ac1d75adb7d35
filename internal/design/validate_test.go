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
	"strings"
	"testing"
	"time"
)

func TestValidateElement(t *testing.T) {
	if err := ValidateElement(New(TypeText)); err != nil {
		t.Fatalf("default text should validate: %v", err)
	}
	e := New(TypeText)
	e.Color = "red"
	e.FontSize = 4
	e.Content = strings.Repeat("a", MaxContentLen+1)
	err := ValidateElement(e)
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Problems) != 3 {
		t.Fatalf("expected three problems, got %v", err)
	}
	off := New(TypeShape)
	off.X, off.Y = -500, 9000
	if err := ValidateElement(off); err != nil {
		t.Fatalf("off-canvas positions are allowed: %v", err)
	}
}

func TestValidateDesign(t *testing.T) {
	d := NewDesign("Ok", Size{800, 600}, time.Now())
	a := New(TypeShape)
	d.Elements = []Element{a, a}
	err := ValidateDesign(d)
	if err == nil || !strings.Contains(err.Error(), "duplicate element id") {
		t.Fatalf("expected duplicate id problem, got %v", err)
	}
	d.Elements = d.Elements[:1]
	d.Metadata.Name = "  "
	if err := ValidateDesign(d); err == nil {
		t.Fatalf("blank name should fail")
	}
}

func TestSafeFont(t *testing.T) {
	if len(FontFamilies) != 7 {
		t.Fatalf("font list has %d entries", len(FontFamilies))
	}
	if SafeFont("georgia") != "Georgia" || SafeFont("Comic Sans MS") != "Arial" {
		t.Fatalf("SafeFont mismatch")
	}
}

func TestSanitize(t *testing.T) {
	if got := SanitizeText(`<b>Big</b> <script>alert(1)</script>Sale & more`); got != "Big Sale & more" {
		t.Fatalf("SanitizeText = %q", got)
	}
	d := NewDesign("<i>Promo</i>", Size{800, 600}, time.Now())
	txt := New(TypeText)
	txt.Content = "<h1>Hi</h1>"
	img := New(TypeImage)
	img.Content = "https://cdn.example/a.png?x=1&y=2"
	d.Elements = []Element{txt, img}
	s := Sanitize(d)
	if s.Metadata.Name != "Promo" || s.Elements[0].Content != "Hi" || s.Elements[1].Content != img.Content {
		t.Fatalf("unexpected sanitize result: %+v", s)
	}
	if d.Elements[0].Content != "<h1>Hi</h1>" {
		t.Fatalf("input design was modified")
	}
}

func TestCompare(t *testing.T) {
	a, b, c := New(TypeText), New(TypeShape), New(TypeLine)
	b2 := b
	b2.X += 5
	d := New(TypeIcon)
	diff := Compare([]Element{a, b, c}, []Element{a, b2, d})
	if len(diff.Added) != 1 || diff.Added[0] != d.ID {
		t.Fatalf("added = %v", diff.Added)
	}
	if len(diff.Removed) != 1 || diff.Removed[0] != c.ID {
		t.Fatalf("removed = %v", diff.Removed)
	}
	if len(diff.Modified) != 1 || diff.Modified[0] != b.ID {
		t.Fatalf("modified = %v", diff.Modified)
	}
	if !Compare([]Element{a}, []Element{a}).Empty() {
		t.Fatalf("identical lists should compare empty")
	}
}
