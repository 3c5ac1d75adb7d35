/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides: snapping a moving box to the edges and centers of fixed
// boxes. UI-agnostic and deterministic.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the largest distance, in canvas units, that still snaps.
	Threshold float64
	// SnapToEdges aligns left, right, top and bottom edges.
	SnapToEdges bool
	// SnapToCenters aligns centers.
	SnapToCenters bool
}

// Anchor is a fixed reference box: the canvas itself or another element.
// Higher weights win ties.
type Anchor struct {
	Rect   Rect
	Weight float64
}

type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// GuideLine is the visual feedback for one snapped axis. Position is the x of
// a vertical guide or the y of a horizontal one; From and To span both boxes.
type GuideLine struct {
	Orientation Orientation
	Kind        string // "edge" or "center"
	Position    float64
	From        Pt
	To          Pt
}

type axisBest struct {
	delta float64
	dist  float64
	guide GuideLine
	ok    bool
}

func (b *axisBest) consider(delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / math.Max(1, weight)
	if !b.ok || score < b.dist {
		*b = axisBest{delta: delta, dist: score, guide: g, ok: true}
	}
}

// ComputeSmartGuides snaps moving against anchors, independently in X and Y.
// It returns the snapped box and the guides to draw.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var bx, by axisBest
	mL, mR, mT, mB := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H
	mc := moving.Center()

	for _, a := range anchors {
		aL, aR, aT, aB := a.Rect.X, a.Rect.X+a.Rect.W, a.Rect.Y, a.Rect.Y+a.Rect.H
		ac := a.Rect.Center()
		vert := func(x float64, kind string) GuideLine { return guideForVertical(x, moving, a.Rect, kind) }
		horz := func(y float64, kind string) GuideLine { return guideForHorizontal(y, moving, a.Rect, kind) }

		if opts.SnapToEdges {
			bx.consider(mL-aL, opts.Threshold, a.Weight, vert(aL, "edge"))
			bx.consider(mR-aR, opts.Threshold, a.Weight, vert(aR, "edge"))
			bx.consider(mL-aR, opts.Threshold, a.Weight, vert(aR, "edge"))
			bx.consider(mR-aL, opts.Threshold, a.Weight, vert(aL, "edge"))

			by.consider(mT-aT, opts.Threshold, a.Weight, horz(aT, "edge"))
			by.consider(mB-aB, opts.Threshold, a.Weight, horz(aB, "edge"))
			by.consider(mT-aB, opts.Threshold, a.Weight, horz(aB, "edge"))
			by.consider(mB-aT, opts.Threshold, a.Weight, horz(aT, "edge"))
		}
		if opts.SnapToCenters {
			bx.consider(mc.X-ac.X, opts.Threshold, a.Weight, vert(ac.X, "center"))
			by.consider(mc.Y-ac.Y, opts.Threshold, a.Weight, horz(ac.Y, "center"))
		}
	}

	snapped := moving
	var guides []GuideLine
	if bx.ok {
		snapped.X = FloatRound(moving.X-bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.ok {
		snapped.Y = FloatRound(moving.Y-by.delta, 3)
		guides = append(guides, by.guide)
	}
	return snapped, guides
}

func guideForVertical(x float64, a, b Rect, kind string) GuideLine {
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: Vertical,
		Kind:        kind,
		Position:    x,
		From:        Pt{x, math.Min(a.Y, b.Y)},
		To:          Pt{x, math.Max(a.Y+a.H, b.Y+b.H)},
	}
}

func guideForHorizontal(y float64, a, b Rect, kind string) GuideLine {
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: Horizontal,
		Kind:        kind,
		Position:    y,
		From:        Pt{math.Min(a.X, b.X), y},
		To:          Pt{math.Max(a.X+a.W, b.X+b.W), y},
	}
}
