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
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// StringExpr is a text-valued expression.
type StringExpr struct {
	Expr
}

func newString(query string, args ...interface{}) StringExpr {
	return StringExpr{newExpr(query, args...)}
}

// StringPath is a text column.
type StringPath struct {
	StringExpr
	name string
}

// NewStringPath returns the column of table t.
func NewStringPath(t Table, column string) StringPath {
	return StringPath{StringExpr: newString("?", t.Column(column)), name: column}
}

// Name is the unqualified column, as used in UPDATE ... SET.
func (p StringPath) Name() schema.Ident {
	return bun.Ident(p.name)
}

func (e StringExpr) Eq(v string) *Predicate {
	return newPredicate("? = ?", e, v)
}

// EqExpr compares with another expression, e.g. a column of a joined table.
func (e StringExpr) EqExpr(o Expression) *Predicate {
	return newPredicate("? = ?", e, o)
}

func (e StringExpr) Ne(v string) *Predicate {
	return newPredicate("? <> ?", e, v)
}

// Like matches a raw LIKE pattern.
func (e StringExpr) Like(pattern string) *Predicate {
	return newPredicate("? LIKE ?", e, pattern)
}

func (e StringExpr) Contains(s string) *Predicate {
	return e.likeEscaped("%" + likeEscaper.Replace(s) + "%")
}

func (e StringExpr) StartsWith(s string) *Predicate {
	return e.likeEscaped(likeEscaper.Replace(s) + "%")
}

func (e StringExpr) EndsWith(s string) *Predicate {
	return e.likeEscaped("%" + likeEscaper.Replace(s))
}

func (e StringExpr) likeEscaped(pattern string) *Predicate {
	return newPredicate("? LIKE ? ESCAPE '!'", e, pattern)
}

// In matches any of vs. No values match nothing.
func (e StringExpr) In(vs ...string) *Predicate {
	if len(vs) == 0 {
		return newPredicate("1 = 0")
	}
	return newPredicate("? IN (?)", e, bun.In(vs))
}

func (e StringExpr) IsNull() *Predicate {
	return newPredicate("? IS NULL", e)
}

func (e StringExpr) IsNotNull() *Predicate {
	return newPredicate("? IS NOT NULL", e)
}

func (e StringExpr) Asc() OrderSpecifier {
	return newOrder(e, asc)
}

func (e StringExpr) Desc() OrderSpecifier {
	return newOrder(e, desc)
}

func (e StringExpr) As(alias string) Projection {
	return As(e, alias)
}

func (e StringExpr) Count() NumberExpr[int64] {
	return newNumber[int64]("COUNT(?)", e)
}

func (e StringExpr) Max() StringExpr {
	return newString("MAX(?)", e)
}

func (e StringExpr) Min() StringExpr {
	return newString("MIN(?)", e)
}

// Concat appends a literal suffix.
func (e StringExpr) Concat(s string) StringExpr {
	return newString("(? || ?)", e, s)
}

// Coalesce substitutes def for NULL.
func (e StringExpr) Coalesce(def string) StringExpr {
	return newString("COALESCE(?, ?)", e, def)
}

// ConcatExpr appends another expression.
func (e StringExpr) ConcatExpr(o Expression) StringExpr {
	return newString("(? || ?)", e, o)
}
