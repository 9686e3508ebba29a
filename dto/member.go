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

// Package dto holds the read-only shapes query results are scanned into.
package dto

import "fmt"

// MemberSearchCondition filters a member search. A nil field is no
// constraint; blank strings count as nil.
type MemberSearchCondition struct {
	Username *string `json:"username,omitempty"`
	TeamName *string `json:"teamName,omitempty"`
	AgeGoe   *int    `json:"ageGoe,omitempty"`
	AgeLoe   *int    `json:"ageLoe,omitempty"`
}

// MemberTeamDto is one row of the member/team left join. Team fields are nil
// for members without a team.
type MemberTeamDto struct {
	MemberID int64   `bun:"member_id" json:"memberId"`
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"teamId"`
	TeamName *string `bun:"team_name" json:"teamName"`
}

func (d MemberTeamDto) String() string {
	return fmt.Sprintf("MemberTeamDto(memberId=%d, username=%s, age=%d, teamId=%s, teamName=%s)",
		d.MemberID, deref(d.Username), d.Age, derefID(d.TeamID), deref(d.TeamName))
}

// MemberDto is a username/age projection.
type MemberDto struct {
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age" json:"age"`
}

// UserDto carries the same data under different field names, filled through
// column aliases.
type UserDto struct {
	Name *string `bun:"name" json:"name"`
	Age  int     `bun:"age" json:"age"`
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func derefID(id *int64) string {
	if id == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d", *id)
}
