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
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinFontSize    = 8
	MaxFontSize    = 200
	MaxContentLen  = 1000
	MaxNameLen     = 200
	MinElementSide = 10
)

// FontFamilies is the fixed font picker list.
var FontFamilies = []string{"Arial", "Helvetica", "Times New Roman", "Georgia", "Verdana", "Courier New", "Impact"}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor accepts #RRGGBB and "transparent".
func ValidColor(s string) bool { return s == Transparent || hexColor.MatchString(s) }

// SafeFont returns f when it is in FontFamilies and the default family otherwise.
func SafeFont(f string) string {
	for _, ff := range FontFamilies {
		if strings.EqualFold(ff, strings.TrimSpace(f)) {
			return ff
		}
	}
	return DefaultFontFamily
}

// ValidationError collects every problem found in one pass.
type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Error() string { return "validation failed: " + strings.Join(v.Problems, "; ") }

func (v *ValidationError) add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) orNil() error {
	if len(v.Problems) == 0 {
		return nil
	}
	return v
}

// ValidateElement checks an element before it is persisted. Positions are not
// checked: elements may sit outside the canvas.
func ValidateElement(e Element) error {
	v := &ValidationError{}
	prefix := e.ID
	if prefix == "" {
		prefix = "element"
	}
	if !e.Type.Valid() {
		v.add("%s: unknown type %q", prefix, e.Type)
	}
	if e.Width < 1 || e.Height < 1 {
		v.add("%s: size %gx%g below 1px", prefix, e.Width, e.Height)
	}
	if e.Opacity < 0 || e.Opacity > 1 {
		v.add("%s: opacity %g outside 0..1", prefix, e.Opacity)
	}
	if e.Color != "" && !ValidColor(e.Color) {
		v.add("%s: color %q is not #RRGGBB", prefix, e.Color)
	}
	if e.BackgroundColor != "" && !ValidColor(e.BackgroundColor) {
		v.add("%s: background %q is not #RRGGBB", prefix, e.BackgroundColor)
	}
	if utf8.RuneCountInString(e.Content) > MaxContentLen {
		v.add("%s: content longer than %d characters", prefix, MaxContentLen)
	}
	if e.Type == TypeText && (e.FontSize < MinFontSize || e.FontSize > MaxFontSize) {
		v.add("%s: font size %g outside %d..%d", prefix, e.FontSize, MinFontSize, MaxFontSize)
	}
	if e.Type == TypeShape && !e.ShapeType.Valid() {
		v.add("%s: unknown shape %q", prefix, e.ShapeType)
	}
	if e.Type == TypeIcon && !e.IconName.Valid() {
		v.add("%s: unknown icon %q", prefix, e.IconName)
	}
	return v.orNil()
}

// ValidateDesign checks the name, canvas size and every element.
func ValidateDesign(d Design) error {
	v := &ValidationError{}
	n := utf8.RuneCountInString(strings.TrimSpace(d.Metadata.Name))
	if n == 0 || n > MaxNameLen {
		v.add("name must be 1..%d characters", MaxNameLen)
	}
	if err := ValidateCanvasSize(d.Metadata.Size()); err != nil {
		v.add("%v", err)
	}
	seen := make(map[string]bool, len(d.Elements))
	for _, e := range d.Elements {
		if seen[e.ID] {
			v.add("%s: duplicate element id", e.ID)
		}
		seen[e.ID] = true
		var ve *ValidationError
		if err := ValidateElement(e); errors.As(err, &ve) {
			v.Problems = append(v.Problems, ve.Problems...)
		}
	}
	return v.orNil()
}
