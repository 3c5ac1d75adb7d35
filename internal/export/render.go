/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders designs to PNG, SVG and PDF and builds gallery
// thumbnails. Every renderer paints elements in zIndex order, skips elements
// hidden through the layer panel and honours rotation about the box center.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"adnate/internal/design"
	"adnate/internal/vector"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// MaxScale bounds the PNG scale factor.
const MaxScale = 8

// ErrInvalidScale is returned for a scale outside (0, MaxScale].
var ErrInvalidScale = errors.New("invalid export scale")

// Options is shared by all formats. Zero values mean: scale 1, white
// background, bundled fonts, image paths relative to the working directory.
type Options struct {
	Scale      float64
	Background string
	Fonts      *FontLibrary
	// AssetDir resolves relative image element sources.
	AssetDir string
}

func (o Options) normalized() (Options, error) {
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Scale < 0 || o.Scale > MaxScale || math.IsNaN(o.Scale) {
		return o, fmt.Errorf("%w: %v", ErrInvalidScale, o.Scale)
	}
	if o.Background == "" {
		o.Background = "#FFFFFF"
	}
	if o.Fonts == nil {
		o.Fonts = defaultFonts
	}
	return o, nil
}

// paintable returns the elements in paint order without hidden ones.
func paintable(d design.Design) []design.Element {
	order := design.PaintOrder(d.Elements)
	out := order[:0]
	for _, e := range order {
		if !e.Hidden() {
			out = append(out, e)
		}
	}
	return out
}

// fillColor is the color an element's body is painted with: icons use the
// foreground color, every other box type the background color.
func fillColor(e design.Element) vector.Color {
	src := e.BackgroundColor
	if e.Type == design.TypeIcon {
		src = e.Color
	}
	c, ok := vector.ParseColor(src)
	if !ok {
		return vector.Transparent
	}
	return c.WithOpacity(e.Opacity)
}

func textColor(e design.Element) vector.Color {
	c, ok := vector.ParseColor(e.Color)
	if !ok {
		c = vector.Black
	}
	return c.WithOpacity(e.Opacity)
}

// Render paints the design into an RGBA image of size (width, height) * scale.
func Render(d design.Design, opt Options) (image.Image, error) {
	opt, err := opt.normalized()
	if err != nil {
		return nil, err
	}
	w := int(math.Round(float64(d.Metadata.Width) * opt.Scale))
	h := int(math.Round(float64(d.Metadata.Height) * opt.Scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render %q: %w", d.Metadata.Name, design.ErrInvalidSize)
	}
	dc := gg.NewContext(w, h)
	if bg, ok := vector.ParseColor(opt.Background); ok && bg.Visible() {
		dc.SetColor(bg.NRGBA())
		dc.Clear()
	}
	dc.Scale(opt.Scale, opt.Scale)

	for _, e := range paintable(d) {
		dc.Push()
		if e.Rotation != 0 {
			c := e.Frame().Center()
			dc.RotateAbout(gg.Radians(e.Rotation), c.X, c.Y)
		}
		switch e.Type {
		case design.TypeText:
			err = drawText(dc, e, opt.Fonts)
		case design.TypeImage:
			drawImage(dc, e, opt.AssetDir)
		default:
			drawOutline(dc, e.Outline(), fillColor(e))
		}
		dc.Pop()
		if err != nil {
			return nil, err
		}
	}
	return dc.Image(), nil
}

func drawOutline(dc *gg.Context, p vector.Path, c vector.Color) {
	if !c.Visible() {
		return
	}
	tracePath(dc, p)
	dc.SetColor(c.NRGBA())
	dc.Fill()
}

func tracePath(dc *gg.Context, p vector.Path) {
	dc.NewSubPath()
	for _, cmd := range p.Cmds {
		a := cmd.Data
		switch cmd.Op {
		case vector.MoveTo:
			dc.MoveTo(a[0], a[1])
		case vector.LineTo:
			dc.LineTo(a[0], a[1])
		case vector.CubicTo:
			dc.CubicTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case vector.Close:
			dc.ClosePath()
		}
	}
}

func drawText(dc *gg.Context, e design.Element, fonts *FontLibrary) error {
	face, err := fonts.Face(e.FontFamily, e.IsBold, e.IsItalic, e.FontSize)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	lineH := float64(m.Height) / 64
	dc.SetColor(textColor(e).NRGBA())
	for i, line := range WrapText(face, e.Content, e.Width) {
		dc.DrawString(line, e.X, e.Y+ascent+float64(i)*lineH)
	}
	return nil
}

// drawImage paints a local or data: URI image cropped to fill the box.
// Sources that cannot be read get a grey placeholder.
func drawImage(dc *gg.Context, e design.Element, assetDir string) {
	w, h := int(math.Round(e.Width)), int(math.Round(e.Height))
	if w <= 0 || h <= 0 {
		return
	}
	src, err := LoadImage(e.Content, assetDir)
	if err != nil {
		dc.DrawRectangle(e.X, e.Y, e.Width, e.Height)
		dc.SetColor(color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: uint8(255 * e.Opacity)})
		dc.Fill()
		return
	}
	img := fitImage(src, w, h, e.Opacity)
	dc.DrawImage(img, int(math.Round(e.X)), int(math.Round(e.Y)))
}

func fitImage(src image.Image, w, h int, opacity float64) *image.NRGBA {
	img := imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
	if opacity < 1 {
		img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			c.A = uint8(float64(c.A)*opacity + 0.5)
			return c
		})
	}
	return img
}

// ErrRemoteImage is returned by LoadImage for http(s) sources, which are
// never fetched during export.
var ErrRemoteImage = errors.New("remote image sources are not fetched")

// LoadImage decodes an image element source: a data: URI with base64
// payload, or a file path (relative paths resolve against dir).
func LoadImage(src, dir string) (image.Image, error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return nil, errors.New("empty image source")
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return nil, ErrRemoteImage
	case strings.HasPrefix(src, "data:"):
		_, payload, ok := strings.Cut(src, ",")
		if !ok || !strings.Contains(src[:len(src)-len(payload)], ";base64") {
			return nil, errors.New("unsupported data URI")
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI: %w", err)
		}
		return imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	}
	path := strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// WritePNG renders the design and encodes it as PNG.
func WritePNG(w io.Writer, d design.Design, opt Options) error {
	img, err := Render(d, opt)
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, imaging.PNG)
}
