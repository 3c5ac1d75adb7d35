/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"encoding/json"
	"log/slog"

	"adnate/internal/design"
	"adnate/internal/telemetry"
	"adnate/internal/undo"
)

type historyState struct {
	Design   design.Design `json:"design"`
	Selected string        `json:"selected,omitempty"`
}

func (s *State) capture() []byte {
	b, err := json.Marshal(historyState{Design: s.design, Selected: s.selected})
	if err != nil {
		// Elements hold only plain values; this cannot fail in practice.
		s.log.Error("history capture", slog.String("err", err.Error()))
		return nil
	}
	return b
}

func (s *State) restore(blob []byte) bool {
	var h historyState
	if err := json.Unmarshal(blob, &h); err != nil {
		s.log.Error("history restore", slog.String("err", err.Error()))
		return false
	}
	if h.Design.Elements == nil {
		h.Design.Elements = []design.Element{}
	}
	s.design = h.Design
	s.selected = h.Selected
	if s.selected != "" && s.index(s.selected) < 0 {
		s.selected = ""
	}
	return true
}

func (s *State) historyKey() string { return s.design.Metadata.ID }

// record pushes before as an undo step when it differs from the current state.
func (s *State) record(label string, before []byte) {
	if before == nil {
		return
	}
	after := s.capture()
	if string(after) == string(before) {
		return
	}
	s.history.PushSnapshot(undo.Snapshot{Key: s.historyKey(), Label: label, Blob: before, TS: s.now()})
	s.dirty = true
	telemetry.CountEdit(label)
	bytes, _, _ := s.history.Stats()
	telemetry.SetUndoBytes(int64(bytes))
}

// mutate runs fn as one undoable edit and notifies observers.
func (s *State) mutate(label string, fn func()) {
	before := s.capture()
	fn()
	s.record(label, before)
	s.changed()
}

// CanUndo reports whether Undo would change anything.
func (s *State) CanUndo() bool { return s.history.CanUndo(s.historyKey()) }

// CanRedo reports whether Redo would change anything.
func (s *State) CanRedo() bool { return s.history.CanRedo(s.historyKey()) }

// Undo restores the state before the last edit. An in-flight gesture is
// finished first.
func (s *State) Undo() bool {
	s.cancelInteractions()
	snap, ok := s.history.Undo(s.historyKey(), s.capture())
	if !ok || !s.restore(snap.Blob) {
		return false
	}
	s.dirty = true
	s.changed()
	return true
}

// Redo re-applies the last undone edit.
func (s *State) Redo() bool {
	s.cancelInteractions()
	snap, ok := s.history.Redo(s.historyKey(), s.capture())
	if !ok || !s.restore(snap.Blob) {
		return false
	}
	s.dirty = true
	s.changed()
	return true
}
