/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"unicode/utf8"

	"adnate/internal/design"
	"adnate/internal/vector"
)

// TextEdit is an inline text editing session. The selection is in runes.
type TextEdit struct {
	ID       string
	Value    string
	SelStart int
	SelEnd   int
}

// DoubleClick opens an inline editor on the text element under the screen
// point. Other element types ignore double clicks.
func (s *State) DoubleClick(screen vector.Pt) bool {
	e, ok := s.HitTest(s.ToCanvas(screen))
	if !ok || e.Type != design.TypeText {
		return false
	}
	return s.BeginTextEdit(e.ID) == nil
}

// BeginTextEdit starts editing the content of text element id with all of
// the text selected.
func (s *State) BeginTextEdit(id string) error {
	e, ok := s.Element(id)
	if !ok {
		return fmt.Errorf("edit %q: %w", id, ErrNotFound)
	}
	if e.Type != design.TypeText {
		return fmt.Errorf("%w: %s element has no editable text", design.ErrInvalidElement, e.Type)
	}
	s.CommitTextEdit()
	s.selected = id
	s.textEdit = &TextEdit{ID: id, Value: e.Content, SelEnd: utf8.RuneCountInString(e.Content)}
	s.changed()
	return nil
}

// TextEditing returns the open editing session.
func (s *State) TextEditing() (TextEdit, bool) {
	if s.textEdit == nil {
		return TextEdit{}, false
	}
	return *s.textEdit, true
}

// SetTextEditValue replaces the text in the open editor. The element is not
// touched until the editor loses focus.
func (s *State) SetTextEditValue(v string) {
	if s.textEdit == nil {
		return
	}
	s.textEdit.Value = v
	n := utf8.RuneCountInString(v)
	s.textEdit.SelStart, s.textEdit.SelEnd = n, n
}

// CommitTextEdit writes the editor value into the element and closes the
// editor. It is what a blur does.
func (s *State) CommitTextEdit() {
	te := s.textEdit
	if te == nil {
		return
	}
	s.textEdit = nil
	if err := s.UpdateElement(te.ID, design.Patch{Content: design.Ptr(te.Value)}); err != nil {
		// The element was deleted while editing.
		s.changed()
	}
}

// CancelTextEdit closes the editor without writing.
func (s *State) CancelTextEdit() {
	if s.textEdit != nil {
		s.textEdit = nil
		s.changed()
	}
}
