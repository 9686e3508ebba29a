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

package repository

import (
	"context"

	"github.com/tomoncle/roster/dsl"
	"github.com/tomoncle/roster/dto"
	"github.com/tomoncle/roster/entity"
	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
)

// MemberQueryRepository collects the read queries over members that go
// beyond the condition search: joins, subqueries, aggregates, case
// expressions, projections and grouping.
type MemberQueryRepository struct {
	db bun.IDB
}

func NewMemberQueryRepository(db bun.IDB) *MemberQueryRepository {
	return &MemberQueryRepository{db: db}
}

func (r *MemberQueryRepository) members(ctx context.Context, build func(q *bun.SelectQuery) *bun.SelectQuery) ([]*entity.Member, error) {
	members := make([]*entity.Member, 0)
	if err := build(r.db.NewSelect().Model(&members)).Scan(ctx); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MemberQueryRepository) FindByUsernameAndAge(ctx context.Context, username string, age int) ([]*entity.Member, error) {
	m := entity.Members
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return dsl.Where(q, m.Username.Eq(username).And(m.Age.Eq(age)))
	})
}

func (r *MemberQueryRepository) FindByAgeBetween(ctx context.Context, lo, hi int) ([]*entity.Member, error) {
	m := entity.Members
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return dsl.OrderBy(dsl.Where(q, m.Age.Between(lo, hi)), m.ID.Asc())
	})
}

// FindByAgeSorted returns members of the given age ordered by age descending
// and then username ascending with unnamed members last.
func (r *MemberQueryRepository) FindByAgeSorted(ctx context.Context, age int) ([]*entity.Member, error) {
	m := entity.Members
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return dsl.OrderBy(dsl.Where(q, m.Age.Eq(age)), m.Age.Desc(), m.Username.Asc().NullsLast())
	})
}

// FetchResults returns one offset/limit window of the matching members plus
// the unwindowed total.
func (r *MemberQueryRepository) FetchResults(ctx context.Context, where *dsl.Predicate, offset, limit int, orders ...dsl.OrderSpecifier) (*types.QueryResults[entity.Member], error) {
	members := make([]*entity.Member, 0)
	q := dsl.Where(r.db.NewSelect().Model(&members), where)
	total, err := dsl.OrderBy(q, orders...).Offset(offset).Limit(limit).ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}
	return &types.QueryResults[entity.Member]{Total: total, Offset: offset, Limit: limit, Results: members}, nil
}

// AgeStatistics aggregates over every member.
func (r *MemberQueryRepository) AgeStatistics(ctx context.Context) (*dto.AgeStatistics, error) {
	m := entity.Members
	stats := new(dto.AgeStatistics)
	q := dsl.Select(dsl.From(r.db.NewSelect(), m.Table),
		dsl.CountAll().As("count"),
		m.Age.Sum().As("sum"),
		m.Age.Avg().As("avg"),
		m.Age.Max().As("max"),
		m.Age.Min().As("min"),
	)
	if err := q.Scan(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// AverageAgeByTeam groups members by team name. A non-nil minimum keeps only
// teams whose average reaches it.
func (r *MemberQueryRepository) AverageAgeByTeam(ctx context.Context, minimum *float64) ([]dto.TeamAverageAge, error) {
	m, t := entity.Members, entity.Teams
	q := dsl.Select(dsl.From(r.db.NewSelect(), m.Table), t.Name.As("team_name"), m.Age.Avg().As("average_age"))
	q = q.Join("JOIN ?", t.Table).JoinOn("?", t.ID.EqExpr(m.TeamID))
	q = dsl.GroupBy(q, t.Name)
	if minimum != nil {
		q = dsl.Having(q, m.Age.Avg().Goe(*minimum))
	}
	rows := make([]dto.TeamAverageAge, 0)
	if err := dsl.OrderBy(q, t.Name.Asc()).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByTeamName inner-joins team, so team-less members never match.
func (r *MemberQueryRepository) FindByTeamName(ctx context.Context, teamName string) ([]*entity.Member, error) {
	m, t := entity.Members, entity.Teams
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Join("JOIN ?", t.Table).JoinOn("?", t.ID.EqExpr(m.TeamID))
		return dsl.OrderBy(dsl.Where(q, t.Name.Eq(teamName)), m.ID.Asc())
	})
}

// FindUsernameMatchingTeamName joins member and team without a relationship,
// pairing rows whose username equals a team name.
func (r *MemberQueryRepository) FindUsernameMatchingTeamName(ctx context.Context) ([]*entity.Member, error) {
	m, t := entity.Members, entity.Teams
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Join("CROSS JOIN ?", t.Table)
		return dsl.OrderBy(dsl.Where(q, m.Username.EqExpr(t.Name)), m.ID.Asc())
	})
}

// LeftJoinTeamNamed returns every member; team columns are filled only for
// members of the named team.
func (r *MemberQueryRepository) LeftJoinTeamNamed(ctx context.Context, teamName string) ([]dto.MemberTeamDto, error) {
	m, t := entity.Members, entity.Teams
	q := dsl.Select(dsl.From(r.db.NewSelect(), m.Table),
		m.ID.As("member_id"),
		m.Username.As("username"),
		m.Age.As("age"),
		t.ID.As("team_id"),
		t.Name.As("team_name"),
	)
	q = q.Join("LEFT JOIN ?", t.Table).JoinOn("?", t.ID.EqExpr(m.TeamID).And(t.Name.Eq(teamName)))
	rows := make([]dto.MemberTeamDto, 0)
	if err := dsl.OrderBy(q, m.ID.Asc()).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchJoin loads the member named username together with its team in one
// statement. sql.ErrNoRows when there is none.
func (r *MemberQueryRepository) FetchJoin(ctx context.Context, username string) (*entity.Member, error) {
	member := new(entity.Member)
	q := r.db.NewSelect().Model(member).Relation("Team")
	if err := dsl.Where(q, entity.Members.Username.Eq(username)).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return member, nil
}

// subMembers is member under a second alias for correlated use inside a
// query that already selects from "m".
var subMembers = entity.MemberColumnsAs("ms")

func (r *MemberQueryRepository) subSelect(column dsl.Expression) *bun.SelectQuery {
	return dsl.Select(dsl.From(r.db.NewSelect(), subMembers.Table), column)
}

// FindOldest returns the members whose age equals the maximum age.
func (r *MemberQueryRepository) FindOldest(ctx context.Context) ([]*entity.Member, error) {
	m := entity.Members
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return dsl.OrderBy(dsl.Where(q, m.Age.EqExpr(dsl.Sub(r.subSelect(subMembers.Age.Max())))), m.ID.Asc())
	})
}

// FindAtLeastAverageAge returns the members at or above the average age.
func (r *MemberQueryRepository) FindAtLeastAverageAge(ctx context.Context) ([]*entity.Member, error) {
	m := entity.Members
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return dsl.OrderBy(dsl.Where(q, m.Age.GoeExpr(dsl.Sub(r.subSelect(subMembers.Age.Avg())))), m.ID.Asc())
	})
}

// FindAgeInOlderThan filters with IN over the ages greater than age.
func (r *MemberQueryRepository) FindAgeInOlderThan(ctx context.Context, age int) ([]*entity.Member, error) {
	m := entity.Members
	sub := dsl.Where(r.subSelect(subMembers.Age), subMembers.Age.Gt(age))
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return dsl.OrderBy(dsl.Where(q, m.Age.InSub(sub)), m.ID.Asc())
	})
}

// UsernamesWithMaxAge pairs every username with the overall maximum age,
// computed by a select-list subquery.
func (r *MemberQueryRepository) UsernamesWithMaxAge(ctx context.Context) ([]dto.MemberDto, error) {
	m := entity.Members
	q := dsl.Select(dsl.From(r.db.NewSelect(), m.Table),
		m.Username.As("username"),
		dsl.Sub(r.subSelect(subMembers.Age.Max())).As("age"),
	)
	rows := make([]dto.MemberDto, 0)
	if err := dsl.OrderBy(q, m.ID.Asc()).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// AgeBrackets labels members with a bracket from a searched CASE.
func (r *MemberQueryRepository) AgeBrackets(ctx context.Context) ([]dto.AgeBracket, error) {
	m := entity.Members
	bracket := dsl.Case().
		When(m.Age.Between(0, 20), "0-20").
		When(m.Age.Between(21, 30), "21-30").
		Otherwise("other")
	return r.brackets(ctx, bracket)
}

// AgeNames labels the ages 10 and 20 and everything else from a simple CASE.
func (r *MemberQueryRepository) AgeNames(ctx context.Context) ([]dto.AgeBracket, error) {
	bracket := dsl.CaseOf(entity.Members.Age).
		When(10, "ten").
		When(20, "twenty").
		Otherwise("other")
	return r.brackets(ctx, bracket)
}

func (r *MemberQueryRepository) brackets(ctx context.Context, bracket dsl.Expr) ([]dto.AgeBracket, error) {
	m := entity.Members
	q := dsl.Select(dsl.From(r.db.NewSelect(), m.Table), m.Username.As("username"), bracket.As("bracket"))
	rows := make([]dto.AgeBracket, 0)
	if err := dsl.OrderBy(q, m.ID.Asc()).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UsernameAgeLabels renders "username_age" for the named member.
func (r *MemberQueryRepository) UsernameAgeLabels(ctx context.Context, username string) ([]string, error) {
	m := entity.Members
	label := m.Username.Concat("_").ConcatExpr(m.Age.StringValue())
	q := dsl.Select(dsl.From(r.db.NewSelect(), m.Table), label.As("label"))
	labels := make([]string, 0)
	if err := dsl.OrderBy(dsl.Where(q, m.Username.Eq(username)), m.ID.Asc()).Scan(ctx, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// MemberDtos projects every member onto MemberDto.
func (r *MemberQueryRepository) MemberDtos(ctx context.Context) ([]dto.MemberDto, error) {
	m := entity.Members
	q := dsl.Select(dsl.From(r.db.NewSelect(), m.Table), m.Username, m.Age)
	rows := make([]dto.MemberDto, 0)
	if err := dsl.OrderBy(q, m.ID.Asc()).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UserDtos projects onto UserDto, renaming username to name.
func (r *MemberQueryRepository) UserDtos(ctx context.Context) ([]dto.UserDto, error) {
	m := entity.Members
	q := dsl.Select(dsl.From(r.db.NewSelect(), m.Table), m.Username.As("name"), m.Age.As("age"))
	rows := make([]dto.UserDto, 0)
	if err := dsl.OrderBy(q, m.ID.Asc()).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// TeamMembers lists each team with its members, ordered by team then member.
// Teams without members are left out.
func (r *MemberQueryRepository) TeamMembers(ctx context.Context) ([]dto.TeamMembers, error) {
	m, t := entity.Members, entity.Teams
	q := dsl.Select(dsl.From(r.db.NewSelect(), t.Table),
		t.ID.As("team_id"),
		t.Name.As("team_name"),
		m.Username.As("username"),
		m.Age.As("age"),
	)
	q = q.Join("JOIN ?", m.Table).JoinOn("?", m.TeamID.EqExpr(t.ID))
	rows := make([]dto.TeamMemberRow, 0)
	if err := dsl.OrderBy(q, t.ID.Asc(), m.ID.Asc()).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return dto.GroupByTeam(rows), nil
}

// FindDynamic filters on whichever of username and age are present.
func (r *MemberQueryRepository) FindDynamic(ctx context.Context, username *string, age *int) ([]*entity.Member, error) {
	m := entity.Members
	var ageEq *dsl.Predicate
	if age != nil {
		ageEq = m.Age.Eq(*age)
	}
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return dsl.OrderBy(dsl.Where(q, UsernameEq(username), ageEq), m.ID.Asc())
	})
}

// FindDynamicByBuilder is FindDynamic with a dsl.Builder.
func (r *MemberQueryRepository) FindDynamicByBuilder(ctx context.Context, username *string, age *int) ([]*entity.Member, error) {
	m := entity.Members
	b := dsl.NewBuilder()
	if hasText(username) {
		b.And(m.Username.Eq(*username))
	}
	if age != nil {
		b.And(m.Age.Eq(*age))
	}
	return r.members(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return dsl.OrderBy(dsl.Where(q, b.Predicate()), m.ID.Asc())
	})
}
