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
	"fmt"
	"io"
	"math"

	"adnate/internal/design"
	"adnate/internal/vector"
	"adnate/internal/version"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

// WritePDF writes the design as a one-page vector PDF whose page is the
// canvas in points (1 canvas pixel = 1pt). Text uses the PDF core fonts so
// nothing is embedded; Scale does not apply.
func WritePDF(w io.Writer, d design.Design, opt Options) error {
	opt, err := opt.normalized()
	if err != nil {
		return err
	}
	W, H := float64(d.Metadata.Width), float64(d.Metadata.Height)
	if W <= 0 || H <= 0 {
		return fmt.Errorf("pdf %q: %w", d.Metadata.Name, design.ErrInvalidSize)
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: W, Ht: H},
	})
	pdf.SetTitle(d.Metadata.Name, true)
	pdf.SetCreator("adnate "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if bg, ok := vector.ParseColor(opt.Background); ok && bg.Visible() {
		setFill(pdf, bg)
		pdf.Rect(0, 0, W, H, "F")
	}
	for i, e := range paintable(d) {
		pdf.SetAlpha(e.Opacity, "Normal")
		pdf.TransformBegin()
		if e.Rotation != 0 {
			c := e.Frame().Center()
			// gofpdf rotates counter-clockwise; canvas rotation is clockwise.
			pdf.TransformRotate(-e.Rotation, c.X, c.Y)
		}
		switch e.Type {
		case design.TypeText:
			pdfText(pdf, e, tr)
		case design.TypeImage:
			pdfImage(pdf, e, i, opt.AssetDir)
		default:
			c := fillColor(e)
			if c.Visible() {
				setFill(pdf, c)
				tracePDF(pdf, e.Outline())
				pdf.DrawPath("F")
			}
		}
		pdf.TransformEnd()
	}
	pdf.SetAlpha(1, "Normal")
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf %q: %w", d.Metadata.Name, err)
	}
	return pdf.Output(w)
}

func setFill(pdf *gofpdf.Fpdf, c vector.Color) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }

func tracePDF(pdf *gofpdf.Fpdf, p vector.Path) {
	for _, c := range p.Cmds {
		a := c.Data
		switch c.Op {
		case vector.MoveTo:
			pdf.MoveTo(a[0], a[1])
		case vector.LineTo:
			pdf.LineTo(a[0], a[1])
		case vector.CubicTo:
			pdf.CurveBezierCubicTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case vector.Close:
			pdf.ClosePath()
		}
	}
}

// coreFont maps a design family onto the closest PDF core font.
func coreFont(family string) string {
	switch design.SafeFont(family) {
	case "Times New Roman", "Georgia":
		return "Times"
	case "Courier New":
		return "Courier"
	default:
		return "Helvetica"
	}
}

func pdfText(pdf *gofpdf.Fpdf, e design.Element, tr func(string) string) {
	style := ""
	if e.IsBold {
		style += "B"
	}
	if e.IsItalic {
		style += "I"
	}
	size := e.FontSize
	if size <= 0 {
		size = design.DefaultFontSize
	}
	pdf.SetFont(coreFont(e.FontFamily), style, size)
	c := textColor(e)
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	lineH := size * 1.2
	y := e.Y + size*0.8
	for _, line := range pdf.SplitText(e.Content, math.Max(e.Width, 1)) {
		pdf.Text(e.X, y, tr(line))
		y += lineH
	}
}

func pdfImage(pdf *gofpdf.Fpdf, e design.Element, idx int, assetDir string) {
	w, h := int(math.Round(e.Width)), int(math.Round(e.Height))
	if w <= 0 || h <= 0 {
		return
	}
	placeholder := func() {
		pdf.SetFillColor(0xE5, 0xE7, 0xEB)
		pdf.Rect(e.X, e.Y, e.Width, e.Height, "F")
	}
	src, err := LoadImage(e.Content, assetDir)
	if err != nil {
		placeholder()
		return
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitImage(src, w, h, 1), imaging.PNG); err != nil {
		placeholder()
		return
	}
	name := fmt.Sprintf("img-%d-%s", idx, e.ID)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	pdf.ImageOptions(name, e.X, e.Y, e.Width, e.Height, false, opts, 0, "")
}
