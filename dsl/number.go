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

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// NumberExpr is a numeric expression whose Go value type is N.
type NumberExpr[N Number] struct {
	Expr
}

func newNumber[N Number](query string, args ...interface{}) NumberExpr[N] {
	return NumberExpr[N]{newExpr(query, args...)}
}

// NumberPath is a numeric column.
type NumberPath[N Number] struct {
	NumberExpr[N]
	name string
}

func NewNumberPath[N Number](t Table, column string) NumberPath[N] {
	return NumberPath[N]{NumberExpr: newNumber[N]("?", t.Column(column)), name: column}
}

// Name is the unqualified column, as used in UPDATE ... SET.
func (p NumberPath[N]) Name() schema.Ident {
	return bun.Ident(p.name)
}

// Num wraps an arbitrary expression, typically a Sub, as a number.
func Num[N Number](e Expression) NumberExpr[N] {
	return newNumber[N]("?", e)
}

// CountAll is COUNT(*).
func CountAll() NumberExpr[int64] {
	return newNumber[int64]("COUNT(*)")
}

func (e NumberExpr[N]) Eq(v N) *Predicate  { return newPredicate("? = ?", e, v) }
func (e NumberExpr[N]) Ne(v N) *Predicate  { return newPredicate("? <> ?", e, v) }
func (e NumberExpr[N]) Gt(v N) *Predicate  { return newPredicate("? > ?", e, v) }
func (e NumberExpr[N]) Goe(v N) *Predicate { return newPredicate("? >= ?", e, v) }
func (e NumberExpr[N]) Lt(v N) *Predicate  { return newPredicate("? < ?", e, v) }
func (e NumberExpr[N]) Loe(v N) *Predicate { return newPredicate("? <= ?", e, v) }

// Between is inclusive on both ends.
func (e NumberExpr[N]) Between(lo, hi N) *Predicate {
	return newPredicate("? BETWEEN ? AND ?", e, lo, hi)
}

func (e NumberExpr[N]) EqExpr(o Expression) *Predicate  { return newPredicate("? = ?", e, o) }
func (e NumberExpr[N]) GtExpr(o Expression) *Predicate  { return newPredicate("? > ?", e, o) }
func (e NumberExpr[N]) GoeExpr(o Expression) *Predicate { return newPredicate("? >= ?", e, o) }
func (e NumberExpr[N]) LtExpr(o Expression) *Predicate  { return newPredicate("? < ?", e, o) }
func (e NumberExpr[N]) LoeExpr(o Expression) *Predicate { return newPredicate("? <= ?", e, o) }

// In matches any of vs. No values match nothing.
func (e NumberExpr[N]) In(vs ...N) *Predicate {
	if len(vs) == 0 {
		return newPredicate("1 = 0")
	}
	return newPredicate("? IN (?)", e, bun.In(vs))
}

// InSub matches the rows of a single-column subquery.
func (e NumberExpr[N]) InSub(q *bun.SelectQuery) *Predicate {
	return newPredicate("? IN (?)", e, q)
}

func (e NumberExpr[N]) IsNull() *Predicate {
	return newPredicate("? IS NULL", e)
}

func (e NumberExpr[N]) IsNotNull() *Predicate {
	return newPredicate("? IS NOT NULL", e)
}

func (e NumberExpr[N]) Add(v N) NumberExpr[N] { return newNumber[N]("(? + ?)", e, v) }
func (e NumberExpr[N]) Sub(v N) NumberExpr[N] { return newNumber[N]("(? - ?)", e, v) }
func (e NumberExpr[N]) Mul(v N) NumberExpr[N] { return newNumber[N]("(? * ?)", e, v) }

func (e NumberExpr[N]) Count() NumberExpr[int64] { return newNumber[int64]("COUNT(?)", e) }
func (e NumberExpr[N]) Sum() NumberExpr[N]       { return newNumber[N]("SUM(?)", e) }
func (e NumberExpr[N]) Max() NumberExpr[N]       { return newNumber[N]("MAX(?)", e) }
func (e NumberExpr[N]) Min() NumberExpr[N]       { return newNumber[N]("MIN(?)", e) }

// Avg is computed over floating point values so integer columns do not
// truncate.
func (e NumberExpr[N]) Avg() NumberExpr[float64] {
	return newNumber[float64]("AVG(? * 1.0)", e)
}

func (e NumberExpr[N]) Asc() OrderSpecifier  { return newOrder(e, asc) }
func (e NumberExpr[N]) Desc() OrderSpecifier { return newOrder(e, desc) }

func (e NumberExpr[N]) As(alias string) Projection {
	return As(e, alias)
}

// StringValue casts to text.
func (e NumberExpr[N]) StringValue() StringExpr {
	return newString("CAST(? AS VARCHAR(32))", e)
}
