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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Size is a canvas size in pixels.
type Size struct{ W, H int }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

const (
	MinCanvasSide = 100
	MaxCanvasSide = 10000
)

var (
	// DefaultCanvas is the size of a new, empty editor session.
	DefaultCanvas = Size{W: 800, H: 600}
	// DefaultBannerSize is used when a brief carries no usable size.
	DefaultBannerSize = Size{W: 1200, H: 630}

	ErrInvalidSize = errors.New("invalid canvas size")
)

// Preset is a named canvas size offered by the template picker.
type Preset struct {
	Key   string
	Label string
	Size  Size
}

var presets = []Preset{
	{Key: "social-post", Label: "Social Post", Size: Size{1080, 1080}},
	{Key: "story", Label: "Story", Size: Size{1080, 1920}},
	{Key: "banner", Label: "Banner", Size: Size{1200, 628}},
	{Key: "poster", Label: "Poster", Size: Size{600, 800}},
	{Key: "instagram-post", Label: "Instagram Post", Size: Size{1080, 1080}},
	{Key: "facebook-cover", Label: "Facebook Cover", Size: Size{851, 315}},
	{Key: "custom", Label: "Custom", Size: Size{800, 800}},
}

// Presets returns the canvas presets in picker order.
func Presets() []Preset { return append([]Preset(nil), presets...) }

// LookupPreset finds a preset by key or label, case-insensitively.
func LookupPreset(name string) (Preset, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Key == n || strings.ToLower(p.Label) == n {
			return p, true
		}
	}
	return Preset{}, false
}

// ParseSize parses "WxH" (for example "1200x630"). Both sides must be
// positive integers.
func ParseSize(s string) (Size, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return Size{}, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return Size{}, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return Size{W: w, H: h}, nil
}

// ParseSizeOr is ParseSize with a fallback for unusable input.
func ParseSizeOr(s string, fallback Size) Size {
	if sz, err := ParseSize(s); err == nil {
		return sz
	}
	return fallback
}

// ValidateCanvasSize checks both sides are within [MinCanvasSide, MaxCanvasSide].
func ValidateCanvasSize(s Size) error {
	if s.W < MinCanvasSide || s.W > MaxCanvasSide || s.H < MinCanvasSide || s.H > MaxCanvasSide {
		return fmt.Errorf("%w: %s outside %d..%d", ErrInvalidSize, s, MinCanvasSide, MaxCanvasSide)
	}
	return nil
}

// AspectRatio is a named ratio such as "16:9".
type AspectRatio struct {
	Name  string
	Value float64
}

// AspectRatios are the ratios accepted by image generation backends.
var AspectRatios = []AspectRatio{
	{"1:1", 1.0},
	{"21:9", 21.0 / 9},
	{"16:9", 16.0 / 9},
	{"4:3", 4.0 / 3},
	{"3:2", 3.0 / 2},
	{"9:16", 9.0 / 16},
	{"3:4", 3.0 / 4},
	{"2:3", 2.0 / 3},
	{"5:4", 5.0 / 4},
	{"4:5", 4.0 / 5},
}

const DefaultAspectRatio = "16:9"

// ClosestAspectRatio returns the supported ratio nearest to w/h. Degenerate
// sizes map to DefaultAspectRatio. The first ratio wins ties.
func ClosestAspectRatio(s Size) string {
	if s.W <= 0 || s.H <= 0 {
		return DefaultAspectRatio
	}
	target := float64(s.W) / float64(s.H)
	best := AspectRatios[0]
	bestDiff := math.Abs(target - best.Value)
	for _, r := range AspectRatios[1:] {
		if d := math.Abs(target - r.Value); d < bestDiff {
			best, bestDiff = r, d
		}
	}
	return best.Name
}

// AspectRatioFor parses "WxH" and returns the closest ratio name.
func AspectRatioFor(sizeStr string) string {
	s, err := ParseSize(sizeStr)
	if err != nil {
		return DefaultAspectRatio
	}
	return ClosestAspectRatio(s)
}
