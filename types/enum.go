/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// CountStrategy decides when a paged query issues its count query.
type CountStrategy int

const (
	// CountAlways runs the count query for every page.
	CountAlways CountStrategy = iota
	// CountWhenNeeded skips the count when the page content implies the total.
	CountWhenNeeded
)

var _ BaseEnum = CountAlways

var countStrategies = map[CountStrategy][2]string{
	CountAlways:     {"always", "count on every page"},
	CountWhenNeeded: {"when_needed", "count only when the total is not derivable"},
}

func (c CountStrategy) IsValid() bool {
	_, ok := countStrategies[c]
	return ok
}

func (c CountStrategy) Number() int {
	if !c.IsValid() {
		return IllegalValue
	}
	return int(c)
}

func (c CountStrategy) Name() string {
	if v, ok := countStrategies[c]; ok {
		return v[0]
	}
	return IllegalName
}

func (c CountStrategy) Desc() string {
	if v, ok := countStrategies[c]; ok {
		return v[1]
	}
	return IllegalDesc
}

func (c CountStrategy) String() string {
	return c.Name()
}
