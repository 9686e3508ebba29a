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
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type item struct {
	bun.BaseModel `bun:"table:item,alias:i"`

	ID    int64   `bun:"id,pk,autoincrement"`
	Label *string `bun:"label"`
	Score int     `bun:"score,notnull"`
	Kind  string  `bun:"kind,notnull"`
}

type itemColumns struct {
	Table Table
	ID    NumberPath[int64]
	Label StringPath
	Score NumberPath[int]
	Kind  StringPath
}

func itemsAs(alias string) itemColumns {
	t := NewTable("item", alias)
	return itemColumns{
		Table: t,
		ID:    NewNumberPath[int64](t, "id"),
		Label: NewStringPath(t, "label"),
		Score: NewNumberPath[int](t, "score"),
		Kind:  NewStringPath(t, "kind"),
	}
}

var items = itemsAs("i")

func newDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// seed creates item with the rows a(1,x), b(2,x), c(3,y), d(4,y), NULL(5,z).
func seed(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()
	_, err := db.NewCreateTable().Model((*item)(nil)).Exec(ctx)
	require.NoError(t, err)
	label := func(s string) *string { return &s }
	rows := []*item{
		{Label: label("a"), Score: 1, Kind: "x"},
		{Label: label("b"), Score: 2, Kind: "x"},
		{Label: label("c"), Score: 3, Kind: "y"},
		{Label: label("d"), Score: 4, Kind: "y"},
		{Score: 5, Kind: "z"},
	}
	_, err = db.NewInsert().Model(&rows).Exec(ctx)
	require.NoError(t, err)
}

func where(db *bun.DB, ps ...*Predicate) string {
	return Where(db.NewSelect().Model((*item)(nil)), ps...).String()
}

func labels(t *testing.T, q *bun.SelectQuery) []string {
	t.Helper()
	var rows []*item
	require.NoError(t, q.Model(&rows).Scan(context.Background()))
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Label == nil {
			out = append(out, "<nil>")
			continue
		}
		out = append(out, *r.Label)
	}
	return out
}

func TestPredicateRendering(t *testing.T) {
	db := newDB(t)
	cases := []struct {
		name string
		p    *Predicate
		sql  string
	}{
		{"eq", items.Label.Eq("a"), `"i"."label" = 'a'`},
		{"ne", items.Kind.Ne("x"), `"i"."kind" <> 'x'`},
		{"goe", items.Score.Goe(2), `"i"."score" >= 2`},
		{"between", items.Score.Between(1, 3), `"i"."score" BETWEEN 1 AND 3`},
		{"in", items.Score.In(1, 2), `"i"."score" IN (1, 2)`},
		{"empty in", items.Kind.In(), `1 = 0`},
		{"null", items.Label.IsNull(), `"i"."label" IS NULL`},
		{"contains escapes", items.Label.Contains("5%_off"), `"i"."label" LIKE '%5!%!_off%' ESCAPE '!'`},
		{"and", items.Score.Gt(1).And(items.Kind.Eq("x")), `("i"."score" > 1 AND "i"."kind" = 'x')`},
		{"or", items.Score.Lt(1).Or(items.Score.Gt(4)), `("i"."score" < 1 OR "i"."score" > 4)`},
		{"not", items.Kind.Eq("x").Not(), `NOT ("i"."kind" = 'x')`},
		{"column", items.Label.EqExpr(items.Kind), `"i"."label" = "i"."kind"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, where(db, tc.p), tc.sql)
		})
	}
}

func TestAbsentPredicates(t *testing.T) {
	db := newDB(t)
	var none *Predicate

	assert.Nil(t, All())
	assert.Nil(t, All(nil, nil))
	assert.Nil(t, Any(nil))
	assert.Nil(t, none.Not())
	assert.Nil(t, none.And(nil))

	p := items.Score.Gt(1)
	assert.Same(t, p, All(nil, p, nil))
	assert.Same(t, p, none.And(p))
	assert.Same(t, p, p.Or(nil))

	assert.NotContains(t, where(db, none), "WHERE")
	assert.Equal(t, where(db), where(db, nil, nil))
}

func TestBuilder(t *testing.T) {
	db := newDB(t)
	b := NewBuilder()
	assert.False(t, b.HasValue())
	assert.Nil(t, b.Not().Predicate())

	b.And(nil).And(items.Kind.Eq("x")).Or(items.Score.Eq(5))
	require.True(t, b.HasValue())
	assert.Contains(t, where(db, b.Predicate()), `("i"."kind" = 'x' OR "i"."score" = 5)`)

	seed(t, db)
	assert.Equal(t, []string{"a", "b", "<nil>"},
		labels(t, OrderBy(Where(db.NewSelect(), b.Predicate()), items.ID.Asc())))
}

func TestWhereOnUpdateAndDelete(t *testing.T) {
	db := newDB(t)
	seed(t, db)
	ctx := context.Background()
	plain := itemsAs("")

	res, err := Where(db.NewUpdate().Model((*item)(nil)).Set("? = ?", plain.Score.Name(), plain.Score.Mul(10)),
		plain.Kind.Eq("y")).Exec(ctx)
	require.NoError(t, err)
	n, _ := res.RowsAffected()
	assert.Equal(t, int64(2), n)

	res, err = Where(db.NewDelete().Model((*item)(nil)), plain.Score.Gt(10)).Exec(ctx)
	require.NoError(t, err)
	n, _ = res.RowsAffected()
	assert.Equal(t, int64(2), n)

	res, err = Where(db.NewUpdate().Model((*item)(nil)).Set("? = ?", plain.Kind.Name(), "w"), True()).Exec(ctx)
	require.NoError(t, err)
	n, _ = res.RowsAffected()
	assert.Equal(t, int64(3), n)
}

func TestOrdering(t *testing.T) {
	db := newDB(t)
	seed(t, db)

	q := OrderBy(db.NewSelect(), items.Label.Desc().NullsFirst())
	assert.Equal(t, []string{"<nil>", "d", "c", "b", "a"}, labels(t, q))

	q = OrderBy(db.NewSelect(), items.Label.Asc().NullsLast())
	assert.Equal(t, []string{"a", "b", "c", "d", "<nil>"}, labels(t, q))

	q = OrderBy(db.NewSelect(), items.Kind.Desc(), items.Score.Asc())
	assert.Equal(t, []string{"<nil>", "c", "d", "a", "b"}, labels(t, q))

	assert.True(t, Order(items.Score, true).IsDescending())
	assert.False(t, items.Score.Asc().NullsLast().IsDescending())
}

type kindStats struct {
	Kind  string  `bun:"kind"`
	Count int64   `bun:"count"`
	Total int     `bun:"total"`
	Avg   float64 `bun:"avg"`
}

func TestAggregatesAndHaving(t *testing.T) {
	db := newDB(t)
	seed(t, db)

	q := Select(From(db.NewSelect(), items.Table),
		items.Kind.As("kind"),
		CountAll().As("count"),
		items.Score.Sum().As("total"),
		items.Score.Avg().As("avg"),
	)
	q = GroupBy(q, items.Kind)
	q = Having(q, CountAll().Gt(1))
	var rows []kindStats
	require.NoError(t, OrderBy(q, items.Kind.Asc()).Scan(context.Background(), &rows))
	assert.Equal(t, []kindStats{
		{Kind: "x", Count: 2, Total: 3, Avg: 1.5},
		{Kind: "y", Count: 2, Total: 7, Avg: 3.5},
	}, rows)
}

func TestSubqueries(t *testing.T) {
	db := newDB(t)
	seed(t, db)
	sub := itemsAs("s")
	maxScore := Select(From(db.NewSelect(), sub.Table), sub.Score.Max())

	q := Where(db.NewSelect(), items.Score.EqExpr(Sub(maxScore)))
	assert.Equal(t, []string{"<nil>"}, labels(t, q))

	inY := Where(Select(From(db.NewSelect(), sub.Table), sub.Score), sub.Kind.Eq("y"))
	q = OrderBy(Where(db.NewSelect(), items.Score.InSub(inY)), items.ID.Asc())
	assert.Equal(t, []string{"c", "d"}, labels(t, q))

	correlated := Where(Select(From(db.NewSelect(), sub.Table), Raw("1")),
		sub.Kind.EqExpr(items.Kind), sub.Score.GtExpr(items.Score))
	q = OrderBy(Where(db.NewSelect(), Exists(correlated).Not()), items.ID.Asc())
	assert.Equal(t, []string{"b", "d", "<nil>"}, labels(t, q))
}

type labelled struct {
	ID    int64  `bun:"id"`
	Label string `bun:"label"`
	Grade string `bun:"grade"`
}

func TestCaseAndProjection(t *testing.T) {
	db := newDB(t)
	seed(t, db)

	grade := Case().
		When(items.Score.Loe(2), "low").
		When(items.Score.Between(3, 4), "mid").
		Otherwise("high")
	name := items.Label.Coalesce("none").Concat("#").ConcatExpr(items.Score.StringValue())

	q := Select(From(db.NewSelect(), items.Table), items.ID, name.As("label"), grade.As("grade"))
	var rows []labelled
	require.NoError(t, OrderBy(q, items.ID.Asc()).Scan(context.Background(), &rows))
	require.Len(t, rows, 5)
	assert.Equal(t, labelled{ID: 1, Label: "a#1", Grade: "low"}, rows[0])
	assert.Equal(t, labelled{ID: 3, Label: "c#3", Grade: "mid"}, rows[2])
	assert.Equal(t, labelled{ID: 5, Label: "none#5", Grade: "high"}, rows[4])

	simple := CaseOf(items.Kind).When("x", "one").When("y", "two").End()
	q = Select(From(db.NewSelect(), items.Table), items.Label, simple.As("grade"))
	q = OrderBy(q, simple.Desc(), items.ID.Asc())
	rows = nil
	require.NoError(t, q.Scan(context.Background(), &rows))
	assert.Equal(t, "c", rows[0].Label)
	assert.Equal(t, "two", rows[0].Grade)
	assert.Equal(t, "", rows[4].Grade)
}

func TestCaseSkipsAbsentBranches(t *testing.T) {
	db := newDB(t)
	seed(t, db)
	var none *Predicate

	grade := Case().
		When(none, "never").
		When(items.Score.Loe(2), "low").
		Otherwise("high")
	q := Select(From(db.NewSelect(), items.Table), items.ID, items.Label, grade.As("grade"))
	assert.NotContains(t, q.String(), "never")

	var rows []labelled
	require.NoError(t, OrderBy(q, items.ID.Asc()).Scan(context.Background(), &rows))
	require.Len(t, rows, 5)
	assert.Equal(t, "low", rows[0].Grade)
	assert.Equal(t, "high", rows[2].Grade)

	only := Case().When(none, "never").Otherwise("always")
	q = Select(From(db.NewSelect(), items.Table), items.ID, items.Label, only.As("grade"))
	rows = nil
	require.NoError(t, OrderBy(q, items.ID.Asc()).Scan(context.Background(), &rows))
	assert.Equal(t, "always", rows[0].Grade)
}
