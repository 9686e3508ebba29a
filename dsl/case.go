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

import "strings"

// CaseBuilder builds CASE expressions. Case starts a searched CASE (WHEN
// predicate), CaseOf a simple CASE over an operand (WHEN value).
type CaseBuilder struct {
	operand Expression
	query   strings.Builder
	args    []interface{}
}

func Case() *CaseBuilder {
	return &CaseBuilder{}
}

func CaseOf(operand Expression) *CaseBuilder {
	return &CaseBuilder{operand: operand}
}

// When adds a branch. cond is a *Predicate for Case and a value or
// Expression for CaseOf. A nil *Predicate drops the branch.
func (c *CaseBuilder) When(cond interface{}, then interface{}) *CaseBuilder {
	if p, ok := cond.(*Predicate); ok && p == nil {
		return c
	}
	c.query.WriteString(" WHEN ? THEN ?")
	c.args = append(c.args, cond, then)
	return c
}

// Otherwise closes the expression with an ELSE branch.
func (c *CaseBuilder) Otherwise(v interface{}) Expr {
	return c.end(" ELSE ?", v)
}

// End closes the expression without ELSE; unmatched rows yield NULL.
func (c *CaseBuilder) End() Expr {
	return c.end("")
}

func (c *CaseBuilder) end(tail string, tailArgs ...interface{}) Expr {
	if len(c.args) == 0 {
		if len(tailArgs) > 0 {
			return newExpr("?", tailArgs[0])
		}
		return newExpr("NULL")
	}
	var (
		query = "CASE"
		args  []interface{}
	)
	if c.operand != nil {
		query += " ?"
		args = append(args, c.operand)
	}
	query += c.query.String() + tail + " END"
	args = append(append(args, c.args...), tailArgs...)
	return newExpr(query, args...)
}

// AsString types a CASE result as text.
func (e Expr) AsString() StringExpr {
	return StringExpr{e}
}

func (e Expr) As(alias string) Projection {
	return As(e, alias)
}

func (e Expr) Asc() OrderSpecifier {
	return newOrder(e, asc)
}

func (e Expr) Desc() OrderSpecifier {
	return newOrder(e, desc)
}
