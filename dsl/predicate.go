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
)

// Predicate is a boolean SQL expression. The nil *Predicate means "no
// condition" and is accepted by every combinator.
type Predicate struct {
	Expr
}

func newPredicate(query string, args ...interface{}) *Predicate {
	return &Predicate{newExpr(query, args...)}
}

// RawPredicate wraps a hand-written boolean fragment.
func RawPredicate(query string, args ...interface{}) *Predicate {
	return newPredicate(query, args...)
}

// All is the conjunction of the non-nil predicates, nil when there are none.
func All(ps ...*Predicate) *Predicate {
	return join(" AND ", ps)
}

// Any is the disjunction of the non-nil predicates, nil when there are none.
func Any(ps ...*Predicate) *Predicate {
	return join(" OR ", ps)
}

func join(op string, ps []*Predicate) *Predicate {
	args := make([]interface{}, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			args = append(args, p)
		}
	}
	switch len(args) {
	case 0:
		return nil
	case 1:
		return args[0].(*Predicate)
	}
	return newPredicate("("+strings.Repeat(op+"?", len(args))[len(op):]+")", args...)
}

// And returns p AND others, skipping nil operands. p may be nil.
func (p *Predicate) And(others ...*Predicate) *Predicate {
	return All(append([]*Predicate{p}, others...)...)
}

// Or returns p OR others, skipping nil operands. p may be nil.
func (p *Predicate) Or(others ...*Predicate) *Predicate {
	return Any(append([]*Predicate{p}, others...)...)
}

// Not negates p. The negation of no condition is still no condition.
func (p *Predicate) Not() *Predicate {
	if p == nil {
		return nil
	}
	return newPredicate("NOT (?)", p)
}

type whereQuery[Q any] interface {
	Where(query string, args ...interface{}) Q
}

// Where adds each non-nil predicate to q. It works for select, update and
// delete queries alike.
func Where[Q whereQuery[Q]](q Q, ps ...*Predicate) Q {
	for _, p := range ps {
		if p != nil {
			q = q.Where("?", p)
		}
	}
	return q
}

// Having adds each non-nil predicate to the HAVING clause of q.
func Having(q *bun.SelectQuery, ps ...*Predicate) *bun.SelectQuery {
	for _, p := range ps {
		if p != nil {
			q = q.Having("?", p)
		}
	}
	return q
}

// Builder accumulates a predicate step by step. The zero value is empty.
type Builder struct {
	p *Predicate
}

func NewBuilder(initial ...*Predicate) *Builder {
	return &Builder{p: All(initial...)}
}

// And conjoins p; nil is ignored.
func (b *Builder) And(p *Predicate) *Builder {
	b.p = b.p.And(p)
	return b
}

// Or disjoins p; nil is ignored.
func (b *Builder) Or(p *Predicate) *Builder {
	b.p = b.p.Or(p)
	return b
}

func (b *Builder) Not() *Builder {
	b.p = b.p.Not()
	return b
}

func (b *Builder) HasValue() bool {
	return b.p != nil
}

// Predicate returns the accumulated predicate, nil when nothing was added.
func (b *Builder) Predicate() *Predicate {
	return b.p
}

// True matches every row. bun refuses UPDATE and DELETE without a WHERE
// clause; use it for intentional whole-table statements.
func True() *Predicate {
	return newPredicate("1 = 1")
}
