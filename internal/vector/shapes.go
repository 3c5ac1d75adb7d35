/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Outlines for shape and icon elements. Each outline is authored in its own
// view box and stretched to the element's box, like an SVG with
// preserveAspectRatio="none".

type outline struct {
	vbW, vbH float64
	build    func() Path
}

var outlines = map[string]outline{
	"rectangle": {1, 1, func() Path { return Polygon(Pt{0, 0}, Pt{1, 0}, Pt{1, 1}, Pt{0, 1}) }},
	"circle":    {2, 2, func() Path { return ellipse(1, 1, 1, 1) }},
	"triangle":  {100, 100, func() Path { return Polygon(Pt{50, 0}, Pt{100, 100}, Pt{0, 100}) }},
	"star": {51, 48, func() Path {
		return Polygon(Pt{25.5, 0}, Pt{31.7, 18.5}, Pt{51, 18.5}, Pt{35.2, 29.9}, Pt{41.4, 48},
			Pt{25.5, 36.6}, Pt{9.6, 48}, Pt{15.8, 29.9}, Pt{0, 18.5}, Pt{19.3, 18.5})
	}},
	"hexagon": {100, 100, func() Path {
		return Polygon(Pt{50, 0}, Pt{93.3, 25}, Pt{93.3, 75}, Pt{50, 100}, Pt{6.7, 75}, Pt{6.7, 25})
	}},
	"heart": {100, 100, func() Path {
		var p Path
		p.MoveTo(50, 83.3)
		p.LineTo(85.4, 51.7)
		p.CubicTo(93.3, 44.6, 93.3, 32.9, 85.4, 25.8)
		p.CubicTo(77.5, 18.7, 64.6, 18.7, 56.7, 25.8)
		p.LineTo(50, 32)
		p.LineTo(43.3, 25.8)
		p.CubicTo(35.4, 18.7, 22.5, 18.7, 14.6, 25.8)
		p.CubicTo(6.7, 32.9, 6.7, 44.6, 14.6, 51.7)
		p.Close()
		return p
	}},
	"message": {100, 100, func() Path {
		var p Path
		p.MoveTo(85, 5)
		p.LineTo(15, 5)
		p.CubicTo(9.5, 5, 5, 9.5, 5, 15)
		p.LineTo(5, 70)
		p.CubicTo(5, 75.5, 9.5, 80, 15, 80)
		p.LineTo(35, 80)
		p.LineTo(50, 95)
		p.LineTo(65, 80)
		p.LineTo(85, 80)
		p.CubicTo(90.5, 80, 95, 75.5, 95, 70)
		p.LineTo(95, 15)
		p.CubicTo(95, 9.5, 90.5, 5, 85, 5)
		p.Close()
		return p
	}},

	// icons, 24x24 grid
	"arrow-right": {24, 24, func() Path {
		return Polygon(Pt{3, 10}, Pt{14, 10}, Pt{14, 5}, Pt{21, 12}, Pt{14, 19}, Pt{14, 14}, Pt{3, 14})
	}},
	"check": {24, 24, func() Path {
		return Polygon(Pt{3, 12.5}, Pt{5.5, 10}, Pt{9.5, 14}, Pt{18.5, 5}, Pt{21, 7.5}, Pt{9.5, 19})
	}},
	"plus": {24, 24, func() Path {
		return Polygon(Pt{10, 3}, Pt{14, 3}, Pt{14, 10}, Pt{21, 10}, Pt{21, 14}, Pt{14, 14},
			Pt{14, 21}, Pt{10, 21}, Pt{10, 14}, Pt{3, 14}, Pt{3, 10}, Pt{10, 10})
	}},
	"minus": {24, 24, func() Path { return Polygon(Pt{3, 10}, Pt{21, 10}, Pt{21, 14}, Pt{3, 14}) }},
	"zap": {24, 24, func() Path {
		return Polygon(Pt{13, 2}, Pt{3, 14}, Pt{12, 14}, Pt{11, 22}, Pt{21, 10}, Pt{12, 10})
	}},
	"square": {24, 24, func() Path { return Polygon(Pt{3, 3}, Pt{21, 3}, Pt{21, 21}, Pt{3, 21}) }},
}

func init() {
	// Icons that share a shape outline.
	outlines["message-circle"] = outlines["message"]
}

// ShapePath returns the named outline stretched to r. ok is false for unknown names.
func ShapePath(name string, r Rect) (Path, bool) {
	o, ok := outlines[name]
	if !ok {
		return Path{}, false
	}
	m := Translate(r.X, r.Y).Mul(Scale(r.W/o.vbW, r.H/o.vbH))
	return o.build().Transform(m), true
}

// HasOutline reports whether name has a built-in outline.
func HasOutline(name string) bool {
	_, ok := outlines[name]
	return ok
}

// ellipse approximates an ellipse with four cubic arcs.
func ellipse(cx, cy, rx, ry float64) Path {
	const k = 0.5522847498
	var p Path
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+k*ry, cx+k*rx, cy+ry, cx, cy+ry)
	p.CubicTo(cx-k*rx, cy+ry, cx-rx, cy+k*ry, cx-rx, cy)
	p.CubicTo(cx-rx, cy-k*ry, cx-k*rx, cy-ry, cx, cy-ry)
	p.CubicTo(cx+k*rx, cy-ry, cx+rx, cy-k*ry, cx+rx, cy)
	p.Close()
	return p
}

// PointInPolygon uses the even-odd rule.
func PointInPolygon(p Pt, poly []Pt) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}

// Distance between two points.
func Distance(a, b Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }
