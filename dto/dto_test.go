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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func str(s string) *string { return &s }

func TestGroupByTeam(t *testing.T) {
	assert.Empty(t, GroupByTeam(nil))

	rows := []TeamMemberRow{
		{TeamID: 1, TeamName: "A", Username: str("memberA"), Age: 10},
		{TeamID: 1, TeamName: "A", Username: str("memberB"), Age: 10},
		{TeamID: 2, TeamName: "B", Username: nil, Age: 15},
	}
	assert.Equal(t, []TeamMembers{
		{Team: TeamDto{TeamID: 1, TeamName: "A"}, Members: []MemberDto{
			{Username: str("memberA"), Age: 10},
			{Username: str("memberB"), Age: 10},
		}},
		{Team: TeamDto{TeamID: 2, TeamName: "B"}, Members: []MemberDto{{Age: 15}}},
	}, GroupByTeam(rows))
}

func TestMemberTeamDtoString(t *testing.T) {
	id := int64(7)
	d := MemberTeamDto{MemberID: 3, Username: str("memberC"), Age: 38, TeamID: &id, TeamName: str("B")}
	assert.Equal(t, "MemberTeamDto(memberId=3, username=memberC, age=38, teamId=7, teamName=B)", d.String())

	d = MemberTeamDto{MemberID: 5, Age: 20}
	assert.Equal(t, "MemberTeamDto(memberId=5, username=<nil>, age=20, teamId=<nil>, teamName=<nil>)", d.String())
}
