/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "sort"

// EventKind names a document-level pointer event.
type EventKind int

const (
	PointerMove EventKind = iota
	PointerUp
)

func (k EventKind) String() string {
	switch k {
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	}
	return "unknown"
}

// PointerEvent is a pointer position in screen (viewport) pixels.
type PointerEvent struct {
	X, Y float64
}

// Document is the document-wide listener registry. Gestures attach their
// move and up handlers here when they start and detach them when they end,
// so a pointer released outside the element still finishes the gesture.
type Document struct {
	next      int
	listeners map[EventKind]map[int]func(PointerEvent)
}

func NewDocument() *Document {
	return &Document{listeners: map[EventKind]map[int]func(PointerEvent){}}
}

// Listen registers fn for kind and returns its remover. Calling the remover
// more than once is a no-op.
func (d *Document) Listen(kind EventKind, fn func(PointerEvent)) (remove func()) {
	if d.listeners[kind] == nil {
		d.listeners[kind] = map[int]func(PointerEvent){}
	}
	id := d.next
	d.next++
	d.listeners[kind][id] = fn
	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		delete(d.listeners[kind], id)
	}
}

// Dispatch delivers ev to every listener of kind in registration order.
// Listeners may remove themselves while being dispatched.
func (d *Document) Dispatch(kind EventKind, ev PointerEvent) {
	ls := d.listeners[kind]
	ids := make([]int, 0, len(ls))
	for id := range ls {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := ls[id]; ok {
			fn(ev)
		}
	}
}

// ListenerCount returns the number of registered listeners of all kinds.
func (d *Document) ListenerCount() int {
	n := 0
	for _, ls := range d.listeners {
		n += len(ls)
	}
	return n
}
