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

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Expression is anything bun can render in place of a "?" placeholder.
type Expression = schema.QueryAppender

// Expr is an untyped SQL fragment.
type Expr struct {
	schema.QueryWithArgs
}

func newExpr(query string, args ...interface{}) Expr {
	return Expr{bun.SafeQuery(query, args...)}
}

// Raw wraps a hand-written fragment. Values must go through args, never
// through query.
func Raw(query string, args ...interface{}) Expr {
	return newExpr(query, args...)
}

// Literal renders v as a bound value.
func Literal(v interface{}) Expr {
	return newExpr("?", v)
}

// Sub renders q in parentheses, for use as a scalar or IN operand.
func Sub(q *bun.SelectQuery) Expr {
	return newExpr("(?)", q)
}

// Exists renders EXISTS (q).
func Exists(q *bun.SelectQuery) *Predicate {
	return newPredicate("EXISTS (?)", q)
}

// Table is a table reference with an alias, e.g. "member" AS "ms".
type Table struct {
	schema.QueryWithArgs
	Name  string
	Alias string
}

func NewTable(name, alias string) Table {
	t := Table{Name: name, Alias: alias}
	if alias == "" {
		t.QueryWithArgs = bun.SafeQuery("?", bun.Ident(name))
	} else {
		t.QueryWithArgs = bun.SafeQuery("? AS ?", bun.Ident(name), bun.Ident(alias))
	}
	return t
}

// Column returns the identifier of column qualified by the table alias, or by
// nothing when the alias is empty.
func (t Table) Column(column string) schema.Ident {
	if t.Alias == "" {
		return bun.Ident(column)
	}
	return bun.Ident(t.Alias + "." + column)
}

// From selects from t instead of the model's default table.
func From(q *bun.SelectQuery, t Table) *bun.SelectQuery {
	return q.TableExpr("?", t)
}
