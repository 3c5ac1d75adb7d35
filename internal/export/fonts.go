/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"adnate/internal/design"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontLibrary maps the design's font families to parsed OpenType fonts.
// Families without a loaded file fall back to the bundled Go fonts, with
// Courier New mapped to Go Mono.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

const monoFamily = "Courier New"

var (
	builtinOnce sync.Once
	builtin     map[fontKey]*opentype.Font
	builtinErr  error
)

func loadBuiltin() {
	src := map[fontKey][]byte{
		{"", false, false}:         goregular.TTF,
		{"", true, false}:          gobold.TTF,
		{"", false, true}:          goitalic.TTF,
		{"", true, true}:           gobolditalic.TTF,
		{monoFamily, false, false}: gomono.TTF,
		{monoFamily, true, false}:  gomonobold.TTF,
		{monoFamily, false, true}:  gomonoitalic.TTF,
		{monoFamily, true, true}:   gomonobolditalic.TTF,
	}
	builtin = make(map[fontKey]*opentype.Font, len(src))
	for k, data := range src {
		f, err := opentype.Parse(data)
		if err != nil {
			builtinErr = fmt.Errorf("parse bundled font: %w", err)
			return
		}
		builtin[k] = f
	}
}

// NewFontLibrary returns a library that only knows the bundled fonts.
func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: map[fontKey]*opentype.Font{}}
}

var defaultFonts = NewFontLibrary()

// LoadTTF registers a TrueType/OpenType file for one family and style.
func (fl *FontLibrary) LoadTTF(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.fonts[fontKey{family: design.SafeFont(family), bold: bold, italic: italic}] = f
	return nil
}

func (fl *FontLibrary) find(k fontKey) (*opentype.Font, error) {
	if f, ok := fl.fonts[k]; ok {
		return f, nil
	}
	for fk, f := range fl.fonts {
		if fk.family == k.family {
			return f, nil
		}
	}
	builtinOnce.Do(loadBuiltin)
	if builtinErr != nil {
		return nil, builtinErr
	}
	if k.family != monoFamily {
		k.family = ""
	}
	return builtin[k], nil
}

// Face returns a new face for the family and style at size pixels. Faces
// are not safe for concurrent use, so every render asks for its own.
func (fl *FontLibrary) Face(family string, bold, italic bool, size float64) (font.Face, error) {
	if size <= 0 {
		size = design.DefaultFontSize
	}
	k := fontKey{family: design.SafeFont(family), bold: bold, italic: italic}
	fl.mu.Lock()
	otf, err := fl.find(k)
	fl.mu.Unlock()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face %s %.0fpx: %w", k.family, size, err)
	}
	return face, nil
}

// WrapText breaks text into lines no wider than maxWidth pixels. Explicit
// newlines always break. A single word wider than maxWidth gets its own line.
func WrapText(face font.Face, text string, maxWidth float64) []string {
	d := &font.Drawer{Face: face}
	measure := func(s string) float64 { return float64(d.MeasureString(s)) / 64 }
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if maxWidth > 0 && measure(line+" "+w) > maxWidth {
				out = append(out, line)
				line = w
				continue
			}
			line += " " + w
		}
		out = append(out, line)
	}
	return out
}
