/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestPathBoundsAndTransform(t *testing.T) {
	p := Polygon(Pt{0, 0}, Pt{10, 0}, Pt{0, 10})
	b := p.Bounds()
	if b.X != 0 || b.Y != 0 || b.W != 10 || b.H != 10 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	moved := p.Transform(Translate(5, 5))
	bb := moved.Bounds()
	if bb.X != 5 || bb.Y != 5 || bb.W != 10 || bb.H != 10 {
		t.Fatalf("unexpected transformed bounds: %+v", bb)
	}
	if len(p.Cmds) != 4 || p.Cmds[3].Op != Close {
		t.Fatalf("polygon should be closed: %+v", p.Cmds)
	}
}

func TestFlattenSamplesCurves(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.CubicTo(0, 10, 10, 10, 10, 0)
	p.Close()
	polys := p.Flatten(4)
	if len(polys) != 1 || len(polys[0]) != 5 {
		t.Fatalf("unexpected flatten result: %+v", polys)
	}
	last := polys[0][4]
	if last.X != 10 || last.Y != 0 {
		t.Fatalf("curve should end at its end point: %+v", last)
	}
}

func TestShapePathFitsBox(t *testing.T) {
	for _, name := range []string{"rectangle", "circle", "triangle", "star", "hexagon", "heart", "message", "zap", "message-circle"} {
		p, ok := ShapePath(name, R(10, 20, 200, 100))
		if !ok {
			t.Fatalf("missing outline %q", name)
		}
		b := p.Bounds()
		if b.X < 10-1e-9 || b.Y < 20-1e-9 || b.X+b.W > 210+1e-9 || b.Y+b.H > 120+1e-9 {
			t.Fatalf("%s outline escapes its box: %+v", name, b)
		}
	}
	if _, ok := ShapePath("pentagon", R(0, 0, 1, 1)); ok {
		t.Fatalf("unknown outline should report false")
	}
}

func TestPointInPolygon(t *testing.T) {
	tri := []Pt{{50, 0}, {100, 100}, {0, 100}}
	if !PointInPolygon(Pt{50, 60}, tri) {
		t.Fatalf("inside point missed")
	}
	if PointInPolygon(Pt{5, 5}, tri) {
		t.Fatalf("corner of bounding box should be outside triangle")
	}
}
