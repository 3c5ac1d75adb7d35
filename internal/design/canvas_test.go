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

func TestPresets(t *testing.T) {
	want := map[string]Size{
		"social-post":    {1080, 1080},
		"story":          {1080, 1920},
		"banner":         {1200, 628},
		"poster":         {600, 800},
		"Instagram Post": {1080, 1080},
		"facebook-cover": {851, 315},
		"custom":         {800, 800},
	}
	for name, sz := range want {
		p, ok := LookupPreset(name)
		if !ok || p.Size != sz {
			t.Fatalf("preset %q = %+v, %v", name, p, ok)
		}
	}
	if _, ok := LookupPreset("billboard"); ok {
		t.Fatalf("unknown preset should not resolve")
	}
}

func TestParseSize(t *testing.T) {
	s, err := ParseSize(" 1200x630 ")
	if err != nil || s != (Size{1200, 630}) {
		t.Fatalf("ParseSize = %+v, %v", s, err)
	}
	for _, bad := range []string{"", "1200", "1200x", "x630", "0x10", "-5x10", "axb", "1x2x3"} {
		if _, err := ParseSize(bad); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("ParseSize(%q) err = %v", bad, err)
		}
	}
	if got := ParseSizeOr("junk", DefaultBannerSize); got != (Size{1200, 630}) {
		t.Fatalf("fallback = %+v", got)
	}
}

func TestValidateCanvasSize(t *testing.T) {
	if err := ValidateCanvasSize(Size{100, 10000}); err != nil {
		t.Fatalf("bounds are inclusive: %v", err)
	}
	if err := ValidateCanvasSize(Size{99, 500}); err == nil {
		t.Fatalf("99 should be rejected")
	}
	if err := ValidateCanvasSize(Size{500, 10001}); err == nil {
		t.Fatalf("10001 should be rejected")
	}
}

func TestClosestAspectRatio(t *testing.T) {
	cases := []struct {
		size Size
		want string
	}{
		{Size{1080, 1080}, "1:1"},
		{Size{1920, 1080}, "16:9"},
		{Size{1200, 630}, "16:9"},
		{Size{1080, 1920}, "9:16"},
		{Size{2560, 1080}, "21:9"},
		{Size{600, 800}, "3:4"},
		{Size{1080, 1350}, "4:5"},
		{Size{0, 100}, "16:9"},
	}
	for _, c := range cases {
		if got := ClosestAspectRatio(c.size); got != c.want {
			t.Fatalf("ClosestAspectRatio(%v) = %s, want %s", c.size, got, c.want)
		}
	}
	if got := AspectRatioFor("bogus"); got != DefaultAspectRatio {
		t.Fatalf("AspectRatioFor(bogus) = %s", got)
	}
}

func TestScaleElements(t *testing.T) {
	in := New(TypeText)
	in.X, in.Y, in.Width, in.Height, in.FontSize = 100, 50, 200, 50, 20
	src := []Element{in}
	out := ScaleElements(src, Size{1000, 500}, Size{1500, 1000})
	got := out[0]
	if got.X != 150 || got.Y != 100 || got.Width != 300 || got.Height != 100 || got.FontSize != 30 {
		t.Fatalf("unexpected scaled element: %+v", got)
	}
	if src[0].X != 100 {
		t.Fatalf("input was modified")
	}
	if !NeedsScaling(Size{1000, 500}, Size{1002, 500}, 1) || NeedsScaling(Size{1000, 500}, Size{1001, 499}, 1) {
		t.Fatalf("NeedsScaling tolerance not honoured")
	}
}
