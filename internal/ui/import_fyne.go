//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"adnate/internal/editor"
)

// importForm is the body of the import dialog: an editable JSON document and
// an inline error line. A rejected document leaves the editor untouched and
// keeps the text for correction.
type importForm struct {
	st      *editor.State
	entry   *widget.Entry
	errText *widget.Label
	onDone  func(elements int)
}

func newImportForm(st *editor.State, onDone func(elements int)) *importForm {
	f := &importForm{st: st, onDone: onDone}
	f.entry = widget.NewMultiLineEntry()
	f.entry.Wrapping = fyne.TextWrapOff
	f.entry.SetPlaceHolder(`{"elements": [ ... ]}`)
	if data, err := st.Export(); err == nil {
		f.entry.SetText(string(data))
	}
	f.errText = widget.NewLabel("")
	f.errText.Importance = widget.DangerImportance
	f.errText.Wrapping = fyne.TextWrapWord
	f.errText.Hide()
	f.entry.OnChanged = func(string) { f.errText.Hide() }
	return f
}

// submit imports the entry text. It reports whether the dialog may close.
func (f *importForm) submit() bool {
	if err := f.st.Import([]byte(f.entry.Text)); err != nil {
		f.errText.SetText(err.Error())
		f.errText.Show()
		return false
	}
	f.errText.Hide()
	if f.onDone != nil {
		f.onDone(len(f.st.Elements()))
	}
	return true
}
