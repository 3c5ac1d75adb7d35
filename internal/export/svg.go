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
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"adnate/internal/design"
	"adnate/internal/vector"

	svg "github.com/ajstarks/svgo"
	"github.com/disintegration/imaging"
)

// WriteSVG writes the design as an SVG document. The viewBox is the canvas;
// the outer size is the canvas times the scale. Local and data: images are
// embedded, http(s) images are linked.
func WriteSVG(w io.Writer, d design.Design, opt Options) error {
	opt, err := opt.normalized()
	if err != nil {
		return err
	}
	W, H := d.Metadata.Width, d.Metadata.Height
	if W <= 0 || H <= 0 {
		return fmt.Errorf("svg %q: %w", d.Metadata.Name, design.ErrInvalidSize)
	}
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(int(math.Round(float64(W)*opt.Scale)), int(math.Round(float64(H)*opt.Scale)), 0, 0, W, H)
	canvas.Title(d.Metadata.Name)
	if bg, ok := vector.ParseColor(opt.Background); ok && bg.Visible() {
		canvas.Rect(0, 0, W, H, "fill:"+bg.Hex())
	}
	for _, e := range paintable(d) {
		attrs := []string{fmt.Sprintf(`id="%s"`, xmlAttr(e.ID))}
		if e.Opacity < 1 {
			attrs = append(attrs, `opacity="`+num(e.Opacity)+`"`)
		}
		if e.Rotation != 0 {
			c := e.Frame().Center()
			attrs = append(attrs, fmt.Sprintf(`transform="rotate(%s %s %s)"`, num(e.Rotation), num(c.X), num(c.Y)))
		}
		canvas.Group(attrs...)
		switch e.Type {
		case design.TypeText:
			if err := svgText(canvas, e, opt.Fonts); err != nil {
				return err
			}
		case design.TypeImage:
			svgImage(canvas, e, opt.AssetDir)
		default:
			c := fillColor(e)
			if c.Visible() {
				canvas.Path(pathData(e.Outline()), "fill:"+c.Hex())
			}
		}
		canvas.Gend()
	}
	canvas.End()
	_, err = w.Write(buf.Bytes())
	return err
}

func svgText(canvas *svg.SVG, e design.Element, fonts *FontLibrary) error {
	face, err := fonts.Face(e.FontFamily, e.IsBold, e.IsItalic, e.FontSize)
	if err != nil {
		return err
	}
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	lineH := float64(m.Height) / 64
	style := []string{
		"font-family:" + cssFamily(e.FontFamily),
		"font-size:" + num(e.FontSize) + "px",
		"fill:" + textColor(e).Hex(),
	}
	if e.IsBold {
		style = append(style, "font-weight:bold")
	}
	if e.IsItalic {
		style = append(style, "font-style:italic")
	}
	st := strings.Join(style, ";")
	for i, line := range WrapText(face, e.Content, e.Width) {
		if line == "" {
			continue
		}
		y := e.Y + ascent + float64(i)*lineH
		canvas.Text(int(math.Round(e.X)), int(math.Round(y)), line, st)
	}
	return nil
}

func svgImage(canvas *svg.SVG, e design.Element, assetDir string) {
	x, y := int(math.Round(e.X)), int(math.Round(e.Y))
	w, h := int(math.Round(e.Width)), int(math.Round(e.Height))
	if w <= 0 || h <= 0 {
		return
	}
	src := strings.TrimSpace(e.Content)
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		canvas.Image(x, y, w, h, src, `preserveAspectRatio="xMidYMid slice"`)
		return
	}
	img, err := LoadImage(src, assetDir)
	if err != nil {
		canvas.Rect(x, y, w, h, "fill:#E5E7EB")
		return
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitImage(img, w, h, 1), imaging.PNG); err != nil {
		canvas.Rect(x, y, w, h, "fill:#E5E7EB")
		return
	}
	canvas.Image(x, y, w, h, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// pathData renders p as SVG path data.
func pathData(p vector.Path) string {
	var b strings.Builder
	for _, c := range p.Cmds {
		a := c.Data
		switch c.Op {
		case vector.MoveTo:
			b.WriteString("M" + num(a[0]) + " " + num(a[1]))
		case vector.LineTo:
			b.WriteString("L" + num(a[0]) + " " + num(a[1]))
		case vector.CubicTo:
			fmt.Fprintf(&b, "C%s %s %s %s %s %s", num(a[0]), num(a[1]), num(a[2]), num(a[3]), num(a[4]), num(a[5]))
		case vector.Close:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func num(v float64) string { return strconv.FormatFloat(vector.FloatRound(v, 3), 'f', -1, 64) }

func cssFamily(f string) string {
	f = design.SafeFont(f)
	if strings.Contains(f, " ") {
		return "'" + f + "'"
	}
	return f
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", ">", "&gt;")

func xmlAttr(s string) string { return attrEscaper.Replace(s) }
