/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"adnate/internal/design"
)

func sample() design.Design {
	d := design.NewDesign("Summer Sale!", design.Size{W: 200, H: 100}, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	d.Elements = []design.Element{
		design.MustCreate(design.Patch{
			ID:              design.Ptr("box"),
			Type:            design.Ptr(design.TypeShape),
			X:               design.Ptr(10.0),
			Y:               design.Ptr(10.0),
			Width:           design.Ptr(40.0),
			Height:          design.Ptr(40.0),
			BackgroundColor: design.Ptr("#FF0000"),
		}),
		design.MustCreate(design.Patch{
			ID:      design.Ptr("title"),
			Type:    design.Ptr(design.TypeText),
			X:       design.Ptr(60.0),
			Y:       design.Ptr(10.0),
			Width:   design.Ptr(130.0),
			Height:  design.Ptr(40.0),
			Content: design.Ptr("Big <sale>"),
		}),
	}
	return d
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestRenderSizeAndScale(t *testing.T) {
	img, err := Render(sample(), Options{Scale: 2})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("bounds = %v, want 400x200", b)
	}
	if got := nrgbaAt(img, 60, 60); got != (color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("shape pixel = %v, want red", got)
	}
	if got := nrgbaAt(img, 390, 190); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("background pixel = %v, want white", got)
	}
}

func TestRenderRejectsBadScale(t *testing.T) {
	for _, s := range []float64{-1, MaxScale + 1} {
		if _, err := Render(sample(), Options{Scale: s}); !errors.Is(err, ErrInvalidScale) {
			t.Fatalf("scale %v: err = %v, want ErrInvalidScale", s, err)
		}
	}
}

func TestRenderSkipsHiddenElements(t *testing.T) {
	d := sample()
	d.Elements[0].Opacity = 0
	img, err := Render(d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := nrgbaAt(img, 30, 30); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("hidden shape painted: %v", got)
	}
}

func TestRenderPaintsByZIndex(t *testing.T) {
	d := sample()
	top := d.Elements[0]
	top.ID = "top"
	top.BackgroundColor = "#0000FF"
	top.ZIndex = 5
	d.Elements = append([]design.Element{top}, d.Elements...)
	img, err := Render(d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := nrgbaAt(img, 30, 30); got != (color.NRGBA{B: 255, A: 255}) {
		t.Fatalf("pixel = %v, want the higher zIndex on top", got)
	}
}

func TestWritePNGDecodes(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, sample(), Options{}); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 200 || cfg.Height != 100 {
		t.Fatalf("png is %dx%d", cfg.Width, cfg.Height)
	}
}

func TestLoadImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	img, err := LoadImage(uri, "")
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("decoded bounds %v", b)
	}
	if _, err := LoadImage("https://example.com/a.png", ""); !errors.Is(err, ErrRemoteImage) {
		t.Fatalf("remote err = %v", err)
	}
	if _, err := LoadImage("data:image/png,abc", ""); err == nil {
		t.Fatal("non-base64 data URI accepted")
	}
	if _, err := LoadImage("missing.png", t.TempDir()); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestImageElementFallsBackToPlaceholder(t *testing.T) {
	d := sample()
	d.Elements = []design.Element{design.MustCreate(design.Patch{
		Type:    design.Ptr(design.TypeImage),
		X:       design.Ptr(0.0),
		Y:       design.Ptr(0.0),
		Width:   design.Ptr(50.0),
		Height:  design.Ptr(50.0),
		Content: design.Ptr("https://example.com/photo.jpg"),
	})}
	img, err := Render(d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := nrgbaAt(img, 25, 25); got != (color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 255}) {
		t.Fatalf("placeholder pixel = %v", got)
	}
}

func TestWrapText(t *testing.T) {
	face, err := NewFontLibrary().Face("Arial", false, false, 16)
	if err != nil {
		t.Fatal(err)
	}
	lines := WrapText(face, "one two three four five six\nseven", 60)
	if len(lines) < 3 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	if lines[len(lines)-1] != "seven" {
		t.Fatalf("explicit newline not honored: %q", lines)
	}
	if got := WrapText(face, "unbreakablewordthatiswide", 10); len(got) != 1 {
		t.Fatalf("single word split: %q", got)
	}
}
