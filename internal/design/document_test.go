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
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

func sampleElements() []Element {
	text := New(TypeText)
	text.Content = "Summer Sale"
	text.IsBold = true
	text.ZIndex = 2
	shape := MustCreate(Patch{Type: Ptr(TypeShape), ShapeType: Ptr(ShapeHeart), Rotation: Ptr(45.5), Opacity: Ptr(0.25)})
	icon := MustCreate(Patch{Type: Ptr(TypeIcon), IconName: Ptr(IconZap), Locked: Ptr(true), ZIndex: Ptr(-1)})
	img := MustCreate(Patch{Type: Ptr(TypeImage), Content: Ptr("https://cdn.example/banner.png")})
	line := New(TypeLine)
	return []Element{text, shape, icon, img, line}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	d := NewDesign("Spring", Size{W: 1200, H: 628}, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	els := sampleElements()
	data, err := Serialize(d.Metadata, els)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	m, got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if m.ID != d.Metadata.ID || m.Name != "Spring" || m.Width != 1200 || m.Height != 628 || !m.CreatedAt.Equal(d.Metadata.CreatedAt) {
		t.Fatalf("metadata mismatch: %+v", m)
	}
	if len(got) != len(els) {
		t.Fatalf("len = %d, want %d", len(got), len(els))
	}
	for i := range els {
		if got[i] != els[i] {
			t.Fatalf("element %d differs:\n got %+v\nwant %+v", i, got[i], els[i])
		}
	}
}

func TestDeserializeAssignsMissingIDAndKeepsFields(t *testing.T) {
	in := `{"elements":[{"type":"shape","shapeType":"circle","x":0,"y":0,"width":100,"height":100}]}`
	m, els, err := Deserialize([]byte(in))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if m.ID != "" {
		t.Fatalf("metadata should be empty, got %+v", m)
	}
	if len(els) != 1 {
		t.Fatalf("expected one element, got %d", len(els))
	}
	e := els[0]
	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if e.Type != TypeShape || e.ShapeType != ShapeCircle || e.X != 0 || e.Y != 0 || e.Width != 100 || e.Height != 100 {
		t.Fatalf("fields not preserved: %+v", e)
	}
}

func TestDeserializeRejectsMalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"elements": [`,
		"empty":             `   `,
		"missing elements":  `{"metadata":{"id":"x","name":"n","width":10,"height":10}}`,
		"elements not list": `{"elements":{"a":1}}`,
		"elements null":     `{"elements":null}`,
		"top-level array":   `[{"type":"text"}]`,
		"unknown type":      `{"elements":[{"type":"video"}]}`,
		"unknown icon":      `{"elements":[{"type":"icon","iconName":"Rocket"}]}`,
		"bad x":             `{"elements":[{"type":"text","x":"10"}]}`,
	}
	for name, in := range cases {
		_, _, err := Deserialize([]byte(in))
		if !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("%s: err = %v, want ErrMalformedDocument", name, err)
		}
	}
	_, _, err := Deserialize([]byte(`{"elements":[{"type":"icon","iconName":"Rocket"}]}`))
	if !errors.Is(err, ErrInvalidElement) {
		t.Fatalf("element errors should stay visible: %v", err)
	}
}

func TestDeserializeEmptyElementList(t *testing.T) {
	_, els, err := Deserialize([]byte(`{"elements":[]}`))
	if err != nil || els == nil || len(els) != 0 {
		t.Fatalf("els = %v, err = %v", els, err)
	}
}

func TestDeserializeDesignRequiresMetadataID(t *testing.T) {
	if _, err := DeserializeDesign([]byte(`{"elements":[]}`)); !IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	d := NewDesign("", Size{}, time.Now())
	data, _ := Serialize(d.Metadata, d.Elements)
	got, err := DeserializeDesign(data)
	if err != nil {
		t.Fatalf("DeserializeDesign: %v", err)
	}
	if got.Metadata.Name != DefaultName || got.Metadata.Size() != DefaultCanvas {
		t.Fatalf("unexpected defaults: %+v", got.Metadata)
	}
}

func TestDuplicateDesign(t *testing.T) {
	d := NewDesign("Launch", Size{W: 1080, H: 1080}, time.Now())
	d.Elements = sampleElements()
	d.Metadata.PreviewURL = "https://cdn.example/p.png"
	cp := d.Duplicate(time.Now())
	if cp.Metadata.ID == d.Metadata.ID || cp.Metadata.Name != "Launch (Copy)" || cp.Metadata.PreviewURL != "" {
		t.Fatalf("unexpected duplicate metadata: %+v", cp.Metadata)
	}
	if len(cp.Elements) != len(d.Elements) {
		t.Fatalf("element count mismatch")
	}
	for i := range cp.Elements {
		if cp.Elements[i].ID == d.Elements[i].ID {
			t.Fatalf("element %d kept its id", i)
		}
		a, b := cp.Elements[i], d.Elements[i]
		a.ID, b.ID = "", ""
		if a != b {
			t.Fatalf("element %d content differs", i)
		}
	}
}

func TestDuplicateDesignKeepsNameWithinLimit(t *testing.T) {
	d := NewDesign(strings.Repeat("é", MaxNameLen), Size{W: 800, H: 600}, time.Now())
	cp := d.Duplicate(time.Now())
	if n := utf8.RuneCountInString(cp.Metadata.Name); n != MaxNameLen {
		t.Fatalf("duplicate name has %d runes, want %d", n, MaxNameLen)
	}
	if !strings.HasSuffix(cp.Metadata.Name, " (Copy)") {
		t.Fatalf("suffix missing: %q", cp.Metadata.Name)
	}
	if err := ValidateDesign(cp); err != nil {
		t.Fatalf("duplicate should validate: %v", err)
	}
}

func TestDeserializeRenamesRepeatedIDs(t *testing.T) {
	doc := `{"elements":[
		{"id":"x","type":"shape","x":1},
		{"id":"x","type":"text","x":2},
		{"id":"y","type":"icon"}
	]}`
	_, els, err := Deserialize([]byte(doc))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(els) != 3 {
		t.Fatalf("elements dropped: %d", len(els))
	}
	if els[0].ID != "x" || els[2].ID != "y" {
		t.Fatalf("first occurrences should keep their ids: %q %q", els[0].ID, els[2].ID)
	}
	if els[1].ID == "" || els[1].ID == "x" || els[1].ID == "y" {
		t.Fatalf("repeated id not replaced: %q", els[1].ID)
	}
	if els[1].Type != TypeText || els[1].X != 2 {
		t.Fatalf("renamed element lost its fields: %+v", els[1])
	}
}

func TestSerializedDocumentMatchesSchema(t *testing.T) {
	d := NewDesign("Schema", Size{W: 800, H: 600}, time.Now())
	data, err := Serialize(d.Metadata, sampleElements())
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Fatalf("expected trailing newline")
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(SchemaJSON()), gojsonschema.NewBytesLoader(data))
	if err != nil {
		t.Fatalf("schema validate: %v", err)
	}
	if !res.Valid() {
		for _, e := range res.Errors() {
			t.Errorf("schema error: %s", e)
		}
		t.FailNow()
	}
}
