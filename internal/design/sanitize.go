/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// SanitizeText strips markup from user text and keeps the plain characters.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Sanitize returns a copy of d with markup stripped from the name and from
// text content. Image URLs are left alone.
func Sanitize(d Design) Design {
	out := d.Clone()
	out.Metadata.Name = SanitizeText(out.Metadata.Name)
	for i := range out.Elements {
		if out.Elements[i].Type == TypeText {
			out.Elements[i].Content = SanitizeText(out.Elements[i].Content)
		}
		out.Elements[i].FontFamily = SanitizeText(out.Elements[i].FontFamily)
	}
	return out
}
