/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the headless design editor: the element list of one
// design, the selection, zoom, pointer gestures and the layer and properties
// panels. A State is owned by one UI event loop and is not safe for
// concurrent mutation.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"adnate/internal/design"
	applog "adnate/internal/log"
	"adnate/internal/undo"
	"adnate/internal/vector"
)

var (
	ErrNotFound    = errors.New("element not found")
	ErrNoSelection = errors.New("no element selected")
)

// Options configures a State. Zero values are usable.
type Options struct {
	// History records undo snapshots. A private manager is created when nil.
	History *undo.Manager
	// Now overrides the clock (tests).
	Now func() time.Time
	// Logger overrides the component logger.
	Logger *slog.Logger
	// Snap enables smart guides while dragging. Nil drags freely.
	Snap *vector.SnapOptions
}

// State is the editor session for one design.
type State struct {
	design    design.Design
	selected  string
	zoom      float64
	origin    vector.Pt
	dirty     bool
	lastSaved time.Time

	doc         *Document
	history     *undo.Manager
	gesture     *gesture
	textEdit    *TextEdit
	layerDrag   int
	layerDragID string
	layerPrev   []byte

	snap   *vector.SnapOptions
	guides []vector.GuideLine

	now       func() time.Time
	log       *slog.Logger
	observers []func()
}

// New starts a session on d. The design is copied.
func New(d design.Design, opts Options) *State {
	s := &State{
		design:    d.Clone(),
		zoom:      1,
		doc:       NewDocument(),
		history:   opts.History,
		layerDrag: -1,
		now:       opts.Now,
		log:       opts.Logger,
		snap:      opts.Snap,
	}
	if s.history == nil {
		s.history = undo.NewManager(undo.Config{MaxPerKey: 200, MinInterval: 400 * time.Millisecond})
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = applog.WithComponent("editor")
	}
	return s
}

// NewEmpty starts a session on a new, empty design of the given size.
func NewEmpty(name string, size design.Size, opts Options) *State {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return New(design.NewDesign(name, size, now()), opts)
}

// OnChange registers fn to run after every mutation. Views use it to redraw.
func (s *State) OnChange(fn func()) { s.observers = append(s.observers, fn) }

func (s *State) changed() {
	for _, fn := range s.observers {
		fn()
	}
}

// Design returns a copy of the current design.
func (s *State) Design() design.Design { return s.design.Clone() }

// Metadata returns the design metadata.
func (s *State) Metadata() design.Metadata { return s.design.Metadata }

// Elements returns a copy of the element list in list order.
func (s *State) Elements() []design.Element {
	return append([]design.Element(nil), s.design.Elements...)
}

// Element returns the element with the given id.
func (s *State) Element(id string) (design.Element, bool) {
	if i := s.index(id); i >= 0 {
		return s.design.Elements[i], true
	}
	return design.Element{}, false
}

func (s *State) index(id string) int {
	for i := range s.design.Elements {
		if s.design.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// IsDirty reports unsaved changes.
func (s *State) IsDirty() bool { return s.dirty }

// LastSaved returns the time of the last successful save (zero if never).
func (s *State) LastSaved() time.Time { return s.lastSaved }

// MarkSaved clears the dirty flag after a successful save. A failed save must
// not call it, so the edits stay pending for a retry.
func (s *State) MarkSaved(at time.Time) {
	s.dirty = false
	s.lastSaved = at
	s.changed()
}

// Selected returns the selected element id, or "".
func (s *State) Selected() string { return s.selected }

// SelectedElement returns the selected element.
func (s *State) SelectedElement() (design.Element, bool) {
	if s.selected == "" {
		return design.Element{}, false
	}
	return s.Element(s.selected)
}

// Select selects id; an unknown id is an error and leaves the selection as is.
func (s *State) Select(id string) error {
	if s.index(id) < 0 {
		return fmt.Errorf("select %q: %w", id, ErrNotFound)
	}
	if s.selected != id {
		s.selected = id
		s.changed()
	}
	return nil
}

// ClearSelection drops the selection.
func (s *State) ClearSelection() {
	if s.selected != "" {
		s.selected = ""
		s.changed()
	}
}

// AddElement creates an element from p, appends it to the list and selects it.
func (s *State) AddElement(p design.Patch) (design.Element, error) {
	e, err := design.CreateElement(p)
	if err != nil {
		return design.Element{}, err
	}
	if s.index(e.ID) >= 0 {
		return design.Element{}, fmt.Errorf("%w: duplicate id %q", design.ErrInvalidElement, e.ID)
	}
	s.mutate("add "+string(e.Type), func() {
		s.design.Elements = append(s.design.Elements, e)
		s.selected = e.ID
	})
	return e, nil
}

// UpdateElement applies p to the element with the given id. Type and id are
// never changed. Locked elements are still updated: locking only guards the
// pointer gestures.
func (s *State) UpdateElement(id string, p design.Patch) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	if err := p.CheckFinite(); err != nil {
		return err
	}
	if p.ShapeType != nil && *p.ShapeType != "" && !p.ShapeType.Valid() {
		return fmt.Errorf("%w: unknown shape %q", design.ErrInvalidElement, *p.ShapeType)
	}
	if p.IconName != nil && *p.IconName != "" {
		n, err := design.ParseIcon(string(*p.IconName))
		if err != nil {
			return err
		}
		p.IconName = &n
	}
	s.mutate("edit", func() { p.Apply(&s.design.Elements[i]) })
	return nil
}

// DeleteElement removes an element and clears the selection if it was selected.
func (s *State) DeleteElement(id string) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	s.mutate("delete", func() {
		s.design.Elements = append(s.design.Elements[:i:i], s.design.Elements[i+1:]...)
		if s.selected == id {
			s.selected = ""
		}
	})
	return nil
}

// ClearCanvas removes every element.
func (s *State) ClearCanvas() {
	s.mutate("clear", func() {
		s.design.Elements = []design.Element{}
		s.selected = ""
	})
}

// ReorderByIDs keeps the listed elements in the given order and rewrites
// their zIndex to the list position. Unknown ids are skipped and unlisted
// elements are dropped.
func (s *State) ReorderByIDs(ids []string) {
	s.mutate("reorder", func() {
		out := make([]design.Element, 0, len(ids))
		for _, id := range ids {
			if i := s.index(id); i >= 0 {
				e := s.design.Elements[i]
				e.ZIndex = len(out)
				out = append(out, e)
			}
		}
		s.design.Elements = out
		if s.selected != "" && !containsID(out, s.selected) {
			s.selected = ""
		}
	})
}

func containsID(els []design.Element, id string) bool {
	for _, e := range els {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Rename sets the design name.
func (s *State) Rename(name string) {
	s.mutate("rename", func() { s.design.Metadata.Name = name })
}

// ResizeCanvas changes the canvas size in metadata only. Elements keep their
// geometry and may end up outside the new bounds.
func (s *State) ResizeCanvas(size design.Size) error {
	if err := design.ValidateCanvasSize(size); err != nil {
		return err
	}
	s.mutate("resize canvas", func() {
		s.design.Metadata.Width = size.W
		s.design.Metadata.Height = size.H
	})
	return nil
}

// ApplyPreset resizes the canvas to a named preset.
func (s *State) ApplyPreset(name string) error {
	p, ok := design.LookupPreset(name)
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", design.ErrInvalidSize, name)
	}
	return s.ResizeCanvas(p.Size)
}

// ScaleToCanvas resizes the canvas and scales every element proportionally.
// Unlike ResizeCanvas this moves elements.
func (s *State) ScaleToCanvas(size design.Size) error {
	if err := design.ValidateCanvasSize(size); err != nil {
		return err
	}
	from := s.design.Metadata.Size()
	s.mutate("scale canvas", func() {
		s.design.Elements = design.ScaleElements(s.design.Elements, from, size)
		s.design.Metadata.Width = size.W
		s.design.Metadata.Height = size.H
	})
	return nil
}

// Import replaces the element list with the elements of an imported
// document. On any error the state is left untouched.
func (s *State) Import(data []byte) error {
	_, els, err := design.Deserialize(data)
	if err != nil {
		s.log.Warn("import rejected", slog.String("err", err.Error()))
		return err
	}
	s.mutate("import", func() {
		s.design.Elements = els
		s.selected = ""
	})
	return nil
}

// Export serializes the current design.
func (s *State) Export() ([]byte, error) {
	return design.Serialize(s.design.Metadata, s.design.Elements)
}

type session struct {
	Design     json.RawMessage `json:"design"`
	SelectedID string          `json:"selectedId,omitempty"`
	Zoom       float64         `json:"zoom"`
	Dirty      bool            `json:"isDirty"`
	LastSaved  *time.Time      `json:"lastSaved,omitempty"`
}

// Persist writes the session (design, selection, zoom, dirty flag and last
// save time) so that Hydrate can restore it in a later process.
func (s *State) Persist(w io.Writer) error {
	doc, err := s.Export()
	if err != nil {
		return err
	}
	sess := session{Design: doc, SelectedID: s.selected, Zoom: s.zoom, Dirty: s.dirty}
	if !s.lastSaved.IsZero() {
		t := s.lastSaved
		sess.LastSaved = &t
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sess)
}

// Hydrate restores a session written by Persist.
func Hydrate(r io.Reader, opts Options) (*State, error) {
	var sess session
	if err := json.NewDecoder(r).Decode(&sess); err != nil {
		return nil, fmt.Errorf("%w: session: %v", design.ErrMalformedDocument, err)
	}
	d, err := design.DeserializeDesign(sess.Design)
	if err != nil {
		return nil, err
	}
	s := New(d, opts)
	if sess.Zoom > 0 {
		s.SetZoom(sess.Zoom)
	}
	if sess.SelectedID != "" && s.index(sess.SelectedID) >= 0 {
		s.selected = sess.SelectedID
	}
	s.dirty = sess.Dirty
	if sess.LastSaved != nil {
		s.lastSaved = *sess.LastSaved
	}
	return s, nil
}
