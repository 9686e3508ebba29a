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

package dto

// TeamDto is a team id/name projection.
type TeamDto struct {
	TeamID   int64  `bun:"team_id" json:"teamId"`
	TeamName string `bun:"team_name" json:"teamName"`
}

// TeamMembers is a team with the members that reference it.
type TeamMembers struct {
	Team    TeamDto     `json:"team"`
	Members []MemberDto `json:"members"`
}

// TeamMemberRow is the flat row TeamMembers are grouped from.
type TeamMemberRow struct {
	TeamID   int64   `bun:"team_id"`
	TeamName string  `bun:"team_name"`
	Username *string `bun:"username"`
	Age      int     `bun:"age"`
}

// GroupByTeam folds rows, assumed ordered by team, into one entry per team.
func GroupByTeam(rows []TeamMemberRow) []TeamMembers {
	var out []TeamMembers
	for _, r := range rows {
		if n := len(out); n == 0 || out[n-1].Team.TeamID != r.TeamID {
			out = append(out, TeamMembers{Team: TeamDto{TeamID: r.TeamID, TeamName: r.TeamName}})
		}
		last := &out[len(out)-1]
		last.Members = append(last.Members, MemberDto{Username: r.Username, Age: r.Age})
	}
	return out
}

// AgeStatistics are aggregates over member ages, all zero when there are no
// rows.
type AgeStatistics struct {
	Count int64   `bun:"count"`
	Sum   int64   `bun:"sum"`
	Avg   float64 `bun:"avg"`
	Max   int     `bun:"max"`
	Min   int     `bun:"min"`
}

// TeamAverageAge is the average member age of one team.
type TeamAverageAge struct {
	TeamName   string  `bun:"team_name"`
	AverageAge float64 `bun:"average_age"`
}

// AgeBracket labels a member with a bracket computed in SQL.
type AgeBracket struct {
	Username *string `bun:"username"`
	Bracket  string  `bun:"bracket"`
}
