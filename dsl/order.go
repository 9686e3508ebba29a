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

type direction string

const (
	asc  direction = "ASC"
	desc direction = "DESC"
)

type nullHandling int

const (
	nullsDefault nullHandling = iota
	nullsFirst
	nullsLast
)

// OrderSpecifier is one ORDER BY item. Null placement is rendered as a
// leading CASE key, which every supported dialect accepts.
type OrderSpecifier struct {
	Expr
	target Expression
	dir    direction
	nulls  nullHandling
}

func newOrder(target Expression, dir direction) OrderSpecifier {
	return OrderSpecifier{target: target, dir: dir}.render()
}

// Order builds an OrderSpecifier over an arbitrary expression.
func Order(target Expression, descending bool) OrderSpecifier {
	if descending {
		return newOrder(target, desc)
	}
	return newOrder(target, asc)
}

func (o OrderSpecifier) render() OrderSpecifier {
	switch o.nulls {
	case nullsFirst:
		o.Expr = newExpr("CASE WHEN ? IS NULL THEN 0 ELSE 1 END, ? "+string(o.dir), o.target, o.target)
	case nullsLast:
		o.Expr = newExpr("CASE WHEN ? IS NULL THEN 1 ELSE 0 END, ? "+string(o.dir), o.target, o.target)
	default:
		o.Expr = newExpr("? "+string(o.dir), o.target)
	}
	return o
}

func (o OrderSpecifier) NullsFirst() OrderSpecifier {
	o.nulls = nullsFirst
	return o.render()
}

func (o OrderSpecifier) NullsLast() OrderSpecifier {
	o.nulls = nullsLast
	return o.render()
}

func (o OrderSpecifier) IsDescending() bool {
	return o.dir == desc
}

// OrderBy appends the specifiers to q in order.
func OrderBy(q *bun.SelectQuery, orders ...OrderSpecifier) *bun.SelectQuery {
	for _, o := range orders {
		q = q.OrderExpr("?", o)
	}
	return q
}
