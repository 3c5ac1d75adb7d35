/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Metadata is one design's canvas configuration.
type Metadata struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	FullURL    string    `json:"fullUrl,omitempty"`
}

// Size returns the canvas size.
func (m Metadata) Size() Size { return Size{W: m.Width, H: m.Height} }

// Design is the persisted aggregate: metadata plus the ordered element list.
type Design struct {
	Metadata Metadata  `json:"metadata"`
	Elements []Element `json:"elements"`
}

const DefaultName = "Untitled Design"

// NewDesign returns an empty design with a fresh id.
func NewDesign(name string, size Size, now time.Time) Design {
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	if size.W <= 0 || size.H <= 0 {
		size = DefaultCanvas
	}
	now = now.UTC()
	return Design{
		Metadata: Metadata{ID: NewID(), Name: name, Width: size.W, Height: size.H, CreatedAt: now, UpdatedAt: now},
		Elements: []Element{},
	}
}

// Clone returns a deep copy.
func (d Design) Clone() Design {
	out := d
	out.Elements = append([]Element(nil), d.Elements...)
	if out.Elements == nil {
		out.Elements = []Element{}
	}
	return out
}

const copySuffix = " (Copy)"

// Duplicate returns a copy with a new id, fresh element ids and " (Copy)"
// appended to the name. The source name is shortened when needed so the
// result stays within MaxNameLen. Preview URLs belong to the source and are
// dropped.
func (d Design) Duplicate(now time.Time) Design {
	out := d.Clone()
	now = now.UTC()
	out.Metadata.ID = NewID()
	base := []rune(strings.TrimSpace(d.Metadata.Name))
	if keep := MaxNameLen - len(copySuffix); len(base) > keep {
		base = base[:keep]
	}
	out.Metadata.Name = strings.TrimSpace(string(base)) + copySuffix
	out.Metadata.CreatedAt = now
	out.Metadata.UpdatedAt = now
	out.Metadata.PreviewURL = ""
	out.Metadata.FullURL = ""
	for i := range out.Elements {
		out.Elements[i].ID = NewID()
	}
	return out
}

// Serialize renders the document as indented JSON with a trailing newline.
func Serialize(m Metadata, elements []Element) ([]byte, error) {
	if elements == nil {
		elements = []Element{}
	}
	b, err := json.MarshalIndent(Design{Metadata: m, Elements: elements}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

//go:embed schema/design.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func documentSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// SchemaJSON returns the embedded JSON Schema of the document.
func SchemaJSON() []byte { return append([]byte(nil), schemaJSON...) }

// Validate checks data against the document schema. All failures wrap
// ErrMalformedDocument.
func Validate(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w: invalid JSON", ErrMalformedDocument)
	}
	s, err := documentSchema()
	if err != nil {
		return fmt.Errorf("load document schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrMalformedDocument, strings.Join(msgs, "; "))
	}
	return nil
}

type wireDocument struct {
	Metadata *Metadata `json:"metadata"`
	Elements []Patch   `json:"elements"`
}

// Deserialize parses a document. It fails with ErrMalformedDocument when the
// text is not JSON, the top level has no elements array, or an element is
// invalid. Elements without an id, or repeating an id already used earlier
// in the list, get a new one; missing attributes take the
// type's defaults and present ones are kept as written. The returned
// metadata is the zero value when the document carries none.
func Deserialize(data []byte) (Metadata, []Element, error) {
	if err := Validate(data); err != nil {
		return Metadata{}, nil, err
	}
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return Metadata{}, nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	out := make([]Element, 0, len(w.Elements))
	seen := make(map[string]bool, len(w.Elements))
	for i, p := range w.Elements {
		e, err := CreateElement(p)
		if err != nil {
			return Metadata{}, nil, fmt.Errorf("%w: element %d: %w", ErrMalformedDocument, i, err)
		}
		if seen[e.ID] {
			e.ID = NewID()
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	var m Metadata
	if w.Metadata != nil {
		m = *w.Metadata
	}
	return m, out, nil
}

// DeserializeDesign is Deserialize for a stored design: a document without
// metadata id is rejected.
func DeserializeDesign(data []byte) (Design, error) {
	m, els, err := Deserialize(data)
	if err != nil {
		return Design{}, err
	}
	if m.ID == "" {
		return Design{}, fmt.Errorf("%w: missing metadata id", ErrMalformedDocument)
	}
	return Design{Metadata: m, Elements: els}, nil
}

// IsMalformed reports whether err came from a rejected import.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformedDocument) }
