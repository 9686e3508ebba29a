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
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomoncle/roster/dsl"
	"github.com/tomoncle/roster/dto"
	"github.com/tomoncle/roster/entity"
	"github.com/tomoncle/roster/types"
	"github.com/tomoncle/roster/utils"
	"github.com/uptrace/bun"
)

var log = utils.NewLogger("REPOSITORY")

// ErrUnsavedTeam is returned when a member references a team without an ID.
var ErrUnsavedTeam = errors.New("team is not saved")

// MemberRepository is the member store and its condition-driven search.
type MemberRepository struct {
	Repository[entity.Member]
	db bun.IDB
}

func NewMemberRepository(db bun.IDB) *MemberRepository {
	return &MemberRepository{Repository: NewRepository[entity.Member](db), db: db}
}

// WithDB returns a copy bound to db, typically a transaction.
func (r *MemberRepository) WithDB(db bun.IDB) *MemberRepository {
	return NewMemberRepository(db)
}

// Save inserts a new member (ID 0) and updates an existing one. The generated
// ID is written back. A referenced team must already be saved.
func (r *MemberRepository) Save(ctx context.Context, m *entity.Member) error {
	if m.Team != nil {
		if m.Team.ID == 0 {
			return fmt.Errorf("member %s: team %q: %w", m, m.Team.Name, ErrUnsavedTeam)
		}
		m.ChangeTeam(m.Team)
	}
	if m.ID == 0 {
		_, err := r.db.NewInsert().Model(m).Exec(ctx)
		return err
	}
	_, err := r.db.NewUpdate().Model(m).WherePK().Exec(ctx)
	return err
}

// FindByID returns sql.ErrNoRows when no member has id.
func (r *MemberRepository) FindByID(ctx context.Context, id int64) (*entity.Member, error) {
	return r.GetOne(ctx, id)
}

func (r *MemberRepository) FindAll(ctx context.Context) ([]*entity.Member, error) {
	return r.FindAllBy(ctx, nil, entity.Members.ID.Asc())
}

func (r *MemberRepository) FindByUsername(ctx context.Context, username string) ([]*entity.Member, error) {
	return r.FindAllBy(ctx, entity.Members.Username.Eq(username), entity.Members.ID.Asc())
}

// searchQuery is the member/team left join projected onto MemberTeamDto.
func (r *MemberRepository) searchQuery(where ...*dsl.Predicate) *bun.SelectQuery {
	m, t := entity.Members, entity.Teams
	q := dsl.From(r.db.NewSelect(), m.Table)
	q = dsl.Select(q,
		m.ID.As("member_id"),
		m.Username.As("username"),
		m.Age.As("age"),
		t.ID.As("team_id"),
		t.Name.As("team_name"),
	)
	q = q.Join("LEFT JOIN ?", t.Table).JoinOn("?", t.ID.EqExpr(m.TeamID))
	return dsl.Where(q, where...)
}

// Search returns every member matching the present fields of cond, joined
// with its team. Rows come in engine order.
func (r *MemberRepository) Search(ctx context.Context, cond dto.MemberSearchCondition) ([]dto.MemberTeamDto, error) {
	rows := make([]dto.MemberTeamDto, 0)
	if err := r.searchQuery(SearchPredicate(cond)).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	log.WithField("rows", len(rows)).Debug("member search")
	return rows, nil
}

// SearchByBuilder is Search with the predicate accumulated in a dsl.Builder.
func (r *MemberRepository) SearchByBuilder(ctx context.Context, cond dto.MemberSearchCondition) ([]dto.MemberTeamDto, error) {
	rows := make([]dto.MemberTeamDto, 0)
	if err := r.searchQuery(searchBuilder(cond).Predicate()).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchEntity applies the Search filter and returns members with their team
// loaded.
func (r *MemberRepository) SearchEntity(ctx context.Context, cond dto.MemberSearchCondition) ([]*entity.Member, error) {
	m, t := entity.Members, entity.Teams
	members := make([]*entity.Member, 0)
	q := r.db.NewSelect().
		Model(&members).
		Relation("Team").
		Join("LEFT JOIN ?", t.Table).JoinOn("?", t.ID.EqExpr(m.TeamID))
	if err := dsl.OrderBy(dsl.Where(q, SearchPredicate(cond)), m.ID.Asc()).Scan(ctx); err != nil {
		return nil, err
	}
	return members, nil
}

// SearchPageSimple pages Search results, ordered by member id unless page
// names orders, and always issues the count query.
func (r *MemberRepository) SearchPageSimple(ctx context.Context, cond dto.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[dto.MemberTeamDto], error) {
	return r.searchPage(ctx, cond, page, types.CountAlways)
}

// SearchPageComplex is SearchPageSimple but skips the count query when the
// page content already determines the total.
func (r *MemberRepository) SearchPageComplex(ctx context.Context, cond dto.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[dto.MemberTeamDto], error) {
	return r.searchPage(ctx, cond, page, types.CountWhenNeeded)
}

func (r *MemberRepository) searchPage(ctx context.Context, cond dto.MemberSearchCondition, page *types.PageRequest, strategy types.CountStrategy) (*types.Pagination[dto.MemberTeamDto], error) {
	where := SearchPredicate(cond).And(page.GetFilter())
	orders := page.GetOrders()
	if len(orders) == 0 {
		orders = []dsl.OrderSpecifier{entity.Members.ID.Asc()}
	}

	items := make([]*dto.MemberTeamDto, 0)
	err := dsl.OrderBy(r.searchQuery(where), orders...).
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Scan(ctx, &items)
	if err != nil {
		return nil, err
	}

	result := types.NewDefaultPagination[dto.MemberTeamDto](page.GetPage(), page.GetPageSize())
	result.Items = items

	if strategy == types.CountWhenNeeded {
		if total, ok := types.DerivableTotal(page.GetOffset(), page.GetPageSize(), len(items)); ok {
			result.Total = total
			log.WithField("strategy", strategy).Debug("count query skipped")
			return result, nil
		}
	}
	total, err := r.searchQuery(where).Count(ctx)
	if err != nil {
		return nil, err
	}
	result.Total = total
	return result, nil
}

// BulkRenameOlderThan sets username on every member older than age and
// returns the number of rows changed.
func (r *MemberRepository) BulkRenameOlderThan(ctx context.Context, age int, username string) (int64, error) {
	m := entity.MemberColumnsAs("")
	q := r.db.NewUpdate().
		Model((*entity.Member)(nil)).
		Set("? = ?", m.Username.Name(), username)
	return affected(dsl.Where(q, m.Age.Gt(age)).Exec(ctx))
}

// BulkAddAge adds delta to every member's age.
func (r *MemberRepository) BulkAddAge(ctx context.Context, delta int) (int64, error) {
	m := entity.MemberColumnsAs("")
	q := r.db.NewUpdate().
		Model((*entity.Member)(nil)).
		Set("? = ?", m.Age.Name(), m.Age.Add(delta))
	return affected(dsl.Where(q, dsl.True()).Exec(ctx))
}

// BulkDeleteOlderThan deletes every member older than age.
func (r *MemberRepository) BulkDeleteOlderThan(ctx context.Context, age int) (int64, error) {
	m := entity.MemberColumnsAs("")
	q := r.db.NewDelete().Model((*entity.Member)(nil))
	return affected(dsl.Where(q, m.Age.Gt(age)).Exec(ctx))
}

func affected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
