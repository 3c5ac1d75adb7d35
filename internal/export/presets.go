/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"adnate/internal/design"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb    PresetName = "web"
	PresetPrint  PresetName = "print"
	PresetSocial PresetName = "social"
)

// Preset is a named set of formats, a raster scale and optional target
// canvas sizes.
type Preset struct {
	Name    PresetName
	Formats []Format
	Scale   float64
	// Sizes names canvas presets the design is rescaled to before export.
	// Empty means the design's own size.
	Sizes []string
}

var presets = map[PresetName]Preset{
	PresetWeb:    {Name: PresetWeb, Formats: []Format{PNG, SVG}, Scale: 1},
	PresetPrint:  {Name: PresetPrint, Formats: []Format{PDF, PNG}, Scale: 2},
	PresetSocial: {Name: PresetSocial, Formats: []Format{PNG}, Scale: 1, Sizes: []string{"social-post", "story", "banner"}},
}

// LookupPreset returns the preset called name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[PresetName(strings.ToLower(strings.TrimSpace(name)))]
	return p, ok
}

// BatchOptions controls a batch export. Formats, Scale and Sizes override
// the preset when set.
//
// Output names are <slug>[-<size>].<ext> under OutDir/<preset>/, where slug
// comes from the design name.
type BatchOptions struct {
	Preset  PresetName
	Formats []Format
	Scale   float64
	Sizes   []string
	OutDir  string
	Options Options
}

// BatchExport writes every format for every target size and returns the
// written paths in order.
func BatchExport(ctx context.Context, d design.Design, opt BatchOptions) ([]string, error) {
	if opt.Preset == "" {
		opt.Preset = PresetWeb
	}
	p, ok := presets[opt.Preset]
	if !ok {
		return nil, fmt.Errorf("unknown export preset %q", opt.Preset)
	}
	formats := p.Formats
	if len(opt.Formats) > 0 {
		formats = opt.Formats
	}
	sizes := p.Sizes
	if len(opt.Sizes) > 0 {
		sizes = opt.Sizes
	}
	o := opt.Options
	o.Scale = p.Scale
	if opt.Scale > 0 {
		o.Scale = opt.Scale
	}
	base := opt.OutDir
	if base == "" {
		base = "exports"
	}
	base = filepath.Join(base, string(p.Name))

	type target struct {
		suffix string
		d      design.Design
	}
	targets := []target{{d: d}}
	if len(sizes) > 0 {
		targets = targets[:0]
		for _, name := range sizes {
			pr, ok := design.LookupPreset(name)
			if !ok {
				return nil, fmt.Errorf("unknown canvas preset %q", name)
			}
			targets = append(targets, target{suffix: "-" + pr.Key, d: resized(d, pr.Size)})
		}
	}

	slug := Slug(d.Metadata.Name)
	var written []string
	for _, t := range targets {
		for _, f := range formats {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			out := filepath.Join(base, slug+t.suffix+"."+string(f))
			if err := WriteFile(ctx, out, t.d, f, o); err != nil {
				return written, fmt.Errorf("%s%s: %w", f, t.suffix, err)
			}
			written = append(written, out)
		}
	}
	return written, nil
}

func resized(d design.Design, to design.Size) design.Design {
	out := d.Clone()
	from := d.Metadata.Size()
	if design.NeedsScaling(from, to, 1) {
		out.Elements = design.ScaleElements(out.Elements, from, to)
	}
	out.Metadata.Width, out.Metadata.Height = to.W, to.H
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a design name into a file-name stem.
func Slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "design"
	}
	return s
}
