/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

// Diff lists element ids that differ between two element lists.
type Diff struct {
	Added    []string
	Removed  []string
	Modified []string
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool { return len(d.Added)+len(d.Removed)+len(d.Modified) == 0 }

// Compare reports which elements of b were added, removed or modified
// relative to a, matching by id. Order of ids follows the lists.
func Compare(a, b []Element) Diff {
	before := make(map[string]Element, len(a))
	for _, e := range a {
		before[e.ID] = e
	}
	after := make(map[string]bool, len(b))
	var d Diff
	for _, e := range b {
		after[e.ID] = true
		old, ok := before[e.ID]
		switch {
		case !ok:
			d.Added = append(d.Added, e.ID)
		case old != e:
			d.Modified = append(d.Modified, e.ID)
		}
	}
	for _, e := range a {
		if !after[e.ID] {
			d.Removed = append(d.Removed, e.ID)
		}
	}
	return d
}
