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

	"github.com/tomoncle/roster/entity"
	"github.com/uptrace/bun"
)

// TeamRepository stores teams and answers which members belong to one.
type TeamRepository struct {
	Repository[entity.Team]
	db bun.IDB
}

func NewTeamRepository(db bun.IDB) *TeamRepository {
	return &TeamRepository{Repository: NewRepository[entity.Team](db), db: db}
}

func (r *TeamRepository) WithDB(db bun.IDB) *TeamRepository {
	return NewTeamRepository(db)
}

// Save inserts a new team (ID 0) and updates an existing one.
func (r *TeamRepository) Save(ctx context.Context, team *entity.Team) error {
	if team.ID == 0 {
		return r.Create(ctx, team)
	}
	return r.Update(ctx, team)
}

// FindByName returns the first team with name; sql.ErrNoRows when none.
func (r *TeamRepository) FindByName(ctx context.Context, name string) (*entity.Team, error) {
	return r.FindOneBy(ctx, entity.Teams.Name.Eq(name))
}

// Members lists the members referencing teamID, in id order.
func (r *TeamRepository) Members(ctx context.Context, teamID int64) ([]*entity.Member, error) {
	return NewRepository[entity.Member](r.db).FindAllBy(ctx, entity.Members.TeamID.Eq(teamID), entity.Members.ID.Asc())
}
