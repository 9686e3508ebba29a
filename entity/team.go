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
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/dsl"
	"github.com/uptrace/bun"
)

const (
	TeamTable = "team"
	TeamAlias = "t"
)

// Team groups members. It stores no member list: a team's members are
// whatever rows of member reference it.
type Team struct {
	bun.BaseModel `bun:"table:team,alias:t"`

	ID   int64  `bun:"team_id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

func NewTeam(name string) *Team {
	return &Team{Name: name}
}

// TeamColumns are the typed columns of team under one alias.
type TeamColumns struct {
	Table dsl.Table
	ID    dsl.NumberPath[int64]
	Name  dsl.StringPath
}

// TeamColumnsAs returns the columns qualified by alias; "" leaves them
// unqualified.
func TeamColumnsAs(alias string) TeamColumns {
	t := dsl.NewTable(TeamTable, alias)
	return TeamColumns{
		Table: t,
		ID:    dsl.NewNumberPath[int64](t, "team_id"),
		Name:  dsl.NewStringPath(t, "name"),
	}
}

// Teams uses the model alias and matches queries built on (*Team)(nil).
var Teams = TeamColumnsAs(TeamAlias)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Team)(nil), 1))
}
