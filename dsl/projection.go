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

package dsl

import "github.com/uptrace/bun"

// Projection is a select-list item "expr AS alias". The alias is the column
// name bun matches against the destination struct.
type Projection struct {
	Expr
	Alias string
}

func As(e Expression, alias string) Projection {
	return Projection{Expr: newExpr("? AS ?", e, bun.Ident(alias)), Alias: alias}
}

// Select appends the expressions to the select list of q.
func Select(q *bun.SelectQuery, items ...Expression) *bun.SelectQuery {
	for _, item := range items {
		q = q.ColumnExpr("?", item)
	}
	return q
}

// GroupBy appends the expressions to the GROUP BY clause of q.
func GroupBy(q *bun.SelectQuery, items ...Expression) *bun.SelectQuery {
	for _, item := range items {
		q = q.GroupExpr("?", item)
	}
	return q
}
