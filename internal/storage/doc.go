/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists designs on the local disk.
// A design lives in one JSON file (<name>.adn.json) written transactionally with a timestamped
// backup of the previous content. A directory of design files forms a library with an embedded
// SQLite index at <dir>/.adnate/index.sqlite that backs the gallery, version history and the
// preview cache. The index is derived from the design files and can be rebuilt at any time.
package storage
