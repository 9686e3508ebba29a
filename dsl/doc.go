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

// Package dsl is a small typed expression layer over bun. Paths, predicates,
// orderings, aggregates, case expressions, subqueries and projections all
// embed schema.QueryWithArgs, so any of them can be passed to a bun query as
// a "?" argument:
//
//	q := db.NewSelect().Model((*entity.Member)(nil))
//	q = dsl.Where(q, m.Age.Goe(35), m.Username.Eq("member1"))
//	q = dsl.OrderBy(q, m.Age.Desc(), m.Username.Asc().NullsLast())
//
// A nil *Predicate is an absent condition. Combinators skip nil operands and
// Where ignores nil arguments, so optional filters compose without branching.
package dsl
