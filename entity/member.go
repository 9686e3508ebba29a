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

package entity

import (
	"fmt"

	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/dsl"
	"github.com/uptrace/bun"
)

const (
	MemberTable = "member"
	MemberAlias = "m"
)

// Member belongs to at most one team. Team is only populated when a query
// asks for the relation.
type Member struct {
	bun.BaseModel `bun:"table:member,alias:m"`

	ID       int64   `bun:"member_id,pk,autoincrement" json:"id"`
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age,notnull" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"team_id,omitempty"`
	Team     *Team   `bun:"rel:belongs-to,join:team_id=team_id" json:"team,omitempty"`
}

// NewMember creates a member, joining team when it is not nil.
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{Username: &username, Age: age}
	m.ChangeTeam(team)
	return m
}

// ChangeTeam moves the member to team; nil leaves it without one. team must
// already be saved for the reference to persist.
func (m *Member) ChangeTeam(team *Team) {
	m.Team = team
	if team == nil {
		m.TeamID = nil
		return
	}
	id := team.ID
	m.TeamID = &id
}

func (m *Member) String() string {
	name := "<nil>"
	if m.Username != nil {
		name = *m.Username
	}
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.ID, name, m.Age)
}

// MemberColumns are the typed columns of member under one alias.
type MemberColumns struct {
	Table    dsl.Table
	ID       dsl.NumberPath[int64]
	Username dsl.StringPath
	Age      dsl.NumberPath[int]
	TeamID   dsl.NumberPath[int64]
}

// MemberColumnsAs returns the columns qualified by alias; "" leaves them
// unqualified, which UPDATE and DELETE statements need on some dialects.
func MemberColumnsAs(alias string) MemberColumns {
	t := dsl.NewTable(MemberTable, alias)
	return MemberColumns{
		Table:    t,
		ID:       dsl.NewNumberPath[int64](t, "member_id"),
		Username: dsl.NewStringPath(t, "username"),
		Age:      dsl.NewNumberPath[int](t, "age"),
		TeamID:   dsl.NewNumberPath[int64](t, "team_id"),
	}
}

// Members uses the model alias and matches queries built on (*Member)(nil).
var Members = MemberColumnsAs(MemberAlias)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Member)(nil), 2))
}
