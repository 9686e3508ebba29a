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

package roster

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/dto"
	"github.com/tomoncle/roster/entity"
	"github.com/tomoncle/roster/repository"
	"github.com/tomoncle/roster/types"
	"github.com/tomoncle/roster/utils"
	"github.com/uptrace/bun"
)

var log = utils.NewLogger("SERVICE")

// MemberService combines the member search, the member query catalogue and
// team membership changes.
type MemberService struct {
	Service[entity.Member]
	db func() bun.IDB

	once    sync.Once
	members *repository.MemberRepository
	queries *repository.MemberQueryRepository
}

// NewMemberService returns a MemberService over the process-wide database.
func NewMemberService() *MemberService {
	return &MemberService{Service: NewService[entity.Member](), db: globalDB}
}

func NewMemberServiceWithDB(db bun.IDB) *MemberService {
	return &MemberService{Service: NewServiceWithDB[entity.Member](db), db: func() bun.IDB { return db }}
}

func (s *MemberService) init() {
	s.once.Do(func() {
		db := s.db()
		s.members = repository.NewMemberRepository(db)
		s.queries = repository.NewMemberQueryRepository(db)
	})
}

// Members exposes the member repository.
func (s *MemberService) Members() *repository.MemberRepository {
	s.init()
	return s.members
}

// Queries exposes the join, subquery, aggregate and projection queries.
func (s *MemberService) Queries() *repository.MemberQueryRepository {
	s.init()
	return s.queries
}

func (s *MemberService) Search(ctx context.Context, cond dto.MemberSearchCondition) ([]dto.MemberTeamDto, error) {
	return s.Members().Search(ctx, cond)
}

// SearchPage pages Search results with the given count strategy.
func (s *MemberService) SearchPage(ctx context.Context, cond dto.MemberSearchCondition, page *types.PageRequest, strategy types.CountStrategy) (*types.Pagination[dto.MemberTeamDto], error) {
	if !strategy.IsValid() {
		return nil, fmt.Errorf("unknown count strategy %d", strategy)
	}
	if strategy == types.CountWhenNeeded {
		return s.Members().SearchPageComplex(ctx, cond, page)
	}
	return s.Members().SearchPageSimple(ctx, cond, page)
}

// Join creates a member in the named team, creating the team when it does
// not exist yet. An empty teamName creates a member without a team.
func (s *MemberService) Join(ctx context.Context, username string, age int, teamName string) (*entity.Member, error) {
	member := entity.NewMember(username, age, nil)
	err := database.RunInTx(ctx, s.db(), func(ctx context.Context, tx bun.Tx) error {
		if teamName != "" {
			team, err := findOrCreateTeam(ctx, repository.NewTeamRepository(tx), teamName)
			if err != nil {
				return err
			}
			member.ChangeTeam(team)
		}
		return s.Members().WithDB(tx).Save(ctx, member)
	})
	if err != nil {
		return nil, fmt.Errorf("join %s to team %q: %w", username, teamName, err)
	}
	log.WithFields(logrus.Fields{"member": member.ID, "team": teamName}).Info("member joined")
	return member, nil
}

// Transfer moves a member to an existing team; an empty teamName removes the
// member from its team.
func (s *MemberService) Transfer(ctx context.Context, memberID int64, teamName string) error {
	return database.RunInTx(ctx, s.db(), func(ctx context.Context, tx bun.Tx) error {
		members := s.Members().WithDB(tx)
		member, err := members.FindByID(ctx, memberID)
		if err != nil {
			return fmt.Errorf("find member %d: %w", memberID, err)
		}
		var team *entity.Team
		if teamName != "" {
			if team, err = repository.NewTeamRepository(tx).FindByName(ctx, teamName); err != nil {
				return fmt.Errorf("find team %q: %w", teamName, err)
			}
		}
		member.ChangeTeam(team)
		return members.Save(ctx, member)
	})
}

func findOrCreateTeam(ctx context.Context, teams *repository.TeamRepository, name string) (*entity.Team, error) {
	team, err := teams.FindByName(ctx, name)
	if err == nil {
		return team, nil
	}
	if is, kind := database.IsSqlError(err); !is || kind != database.NoRowsErr {
		return nil, err
	}
	team = entity.NewTeam(name)
	if err := teams.Save(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// RenameOlderThan sets username on every member older than age.
func (s *MemberService) RenameOlderThan(ctx context.Context, age int, username string) (int64, error) {
	n, err := s.Members().BulkRenameOlderThan(ctx, age, username)
	if err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{"age": age, "rows": n}).Info("members renamed")
	return n, nil
}

func (s *MemberService) AddAge(ctx context.Context, delta int) (int64, error) {
	return s.Members().BulkAddAge(ctx, delta)
}

func (s *MemberService) DeleteOlderThan(ctx context.Context, age int) (int64, error) {
	n, err := s.Members().BulkDeleteOlderThan(ctx, age)
	if err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{"age": age, "rows": n}).Info("members deleted")
	return n, nil
}
