/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import "fmt"

// IconName is the closed set of icons an icon element can show. Every name
// has a vector outline, so rendering never meets an unknown icon.
type IconName string

const (
	IconStar          IconName = "star"
	IconHeart         IconName = "heart"
	IconCircle        IconName = "circle"
	IconSquare        IconName = "square"
	IconTriangle      IconName = "triangle"
	IconHexagon       IconName = "hexagon"
	IconMessageCircle IconName = "message-circle"
	IconArrowRight    IconName = "arrow-right"
	IconCheck         IconName = "check"
	IconPlus          IconName = "plus"
	IconMinus         IconName = "minus"
	IconZap           IconName = "zap"
)

// Icons lists the supported icons in picker order.
var Icons = []IconName{
	IconStar, IconHeart, IconCircle, IconSquare, IconTriangle, IconHexagon,
	IconMessageCircle, IconArrowRight, IconCheck, IconPlus, IconMinus, IconZap,
}

var iconByName = func() map[string]IconName {
	m := make(map[string]IconName, len(Icons))
	for _, n := range Icons {
		m[string(n)] = n
	}
	// Component-style names used by older documents.
	m["Star"] = IconStar
	m["Heart"] = IconHeart
	m["Circle"] = IconCircle
	m["Square"] = IconSquare
	m["Triangle"] = IconTriangle
	m["Hexagon"] = IconHexagon
	m["MessageCircle"] = IconMessageCircle
	m["ArrowRight"] = IconArrowRight
	m["Check"] = IconCheck
	m["Plus"] = IconPlus
	m["Minus"] = IconMinus
	m["Zap"] = IconZap
	return m
}()

// ParseIcon maps a stored icon name to its enum value.
func ParseIcon(s string) (IconName, error) {
	if n, ok := iconByName[s]; ok {
		return n, nil
	}
	return "", fmt.Errorf("%w: unknown icon %q", ErrInvalidElement, s)
}

func (n IconName) Valid() bool {
	_, err := ParseIcon(string(n))
	return err == nil
}
