/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import "math"

// NeedsScaling reports whether from and to differ by more than tolerance
// pixels on either side.
func NeedsScaling(from, to Size, tolerance int) bool {
	dw := from.W - to.W
	dh := from.H - to.H
	if dw < 0 {
		dw = -dw
	}
	if dh < 0 {
		dh = -dh
	}
	return dw > tolerance || dh > tolerance
}

// ScaleElements maps elements laid out for canvas from onto canvas to.
// Positions and sizes scale per axis and are rounded to whole pixels; font
// sizes scale by the smaller factor so text never overflows its box. The
// input slice is not modified. Canvas resizes in the editor do not call this;
// it is an explicit action.
func ScaleElements(elements []Element, from, to Size) []Element {
	out := append([]Element(nil), elements...)
	if from.W <= 0 || from.H <= 0 || to.W <= 0 || to.H <= 0 {
		return out
	}
	sx := float64(to.W) / float64(from.W)
	sy := float64(to.H) / float64(from.H)
	sf := math.Min(sx, sy)
	for i := range out {
		e := &out[i]
		e.X = math.Round(e.X * sx)
		e.Y = math.Round(e.Y * sy)
		e.Width = math.Round(e.Width * sx)
		e.Height = math.Round(e.Height * sy)
		if e.Type == TypeText && e.FontSize > 0 {
			e.FontSize = math.Max(1, math.Round(e.FontSize*sf))
		}
	}
	return out
}
