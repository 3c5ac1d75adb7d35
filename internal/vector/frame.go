/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Frame is an element's box in canvas space plus its rotation in degrees
// about the box center.
type Frame struct {
	Rect
	Rotation float64
}

// Transform maps the unrotated box into its rotated position.
func (f Frame) Transform() Affine2D {
	if f.Rotation == 0 {
		return Identity
	}
	return RotateAbout(f.Rotation, f.Center())
}

// Hit reports whether p (canvas space) lies inside the rotated box.
func (f Frame) Hit(p Pt) bool {
	q := f.Transform().Invert().Apply(p)
	return f.Rect.Contains(q)
}

// Corners returns nw, ne, se, sw after rotation.
func (f Frame) Corners() [4]Pt {
	m := f.Transform()
	return [4]Pt{
		m.Apply(Pt{f.X, f.Y}),
		m.Apply(Pt{f.X + f.W, f.Y}),
		m.Apply(Pt{f.X + f.W, f.Y + f.H}),
		m.Apply(Pt{f.X, f.Y + f.H}),
	}
}

// Bounds returns the axis-aligned bounding box of the rotated frame.
func (f Frame) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range f.Corners() {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
