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
	"strings"

	"github.com/tomoncle/roster/dsl"
	"github.com/tomoncle/roster/dto"
	"github.com/tomoncle/roster/entity"
)

// hasText reports whether s holds something other than whitespace.
func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// UsernameEq matches the member username, or nothing is constrained when
// username is nil or blank.
func UsernameEq(username *string) *dsl.Predicate {
	if !hasText(username) {
		return nil
	}
	return entity.Members.Username.Eq(*username)
}

// TeamNameEq matches the joined team name. Members without a team never
// satisfy it.
func TeamNameEq(teamName *string) *dsl.Predicate {
	if !hasText(teamName) {
		return nil
	}
	return entity.Teams.Name.Eq(*teamName)
}

// AgeGoe is an inclusive lower bound; 0 is a real bound.
func AgeGoe(ageGoe *int) *dsl.Predicate {
	if ageGoe == nil {
		return nil
	}
	return entity.Members.Age.Goe(*ageGoe)
}

// AgeLoe is an inclusive upper bound.
func AgeLoe(ageLoe *int) *dsl.Predicate {
	if ageLoe == nil {
		return nil
	}
	return entity.Members.Age.Loe(*ageLoe)
}

// AgeBetween is the conjunction of AgeGoe and AgeLoe, nil when both are nil.
func AgeBetween(ageGoe, ageLoe *int) *dsl.Predicate {
	return AgeGoe(ageGoe).And(AgeLoe(ageLoe))
}

// SearchPredicate is the conjunction of every present field of cond, nil
// when none is.
func SearchPredicate(cond dto.MemberSearchCondition) *dsl.Predicate {
	return dsl.All(
		UsernameEq(cond.Username),
		TeamNameEq(cond.TeamName),
		AgeGoe(cond.AgeGoe),
		AgeLoe(cond.AgeLoe),
	)
}

// searchBuilder accumulates the same conjunction step by step.
func searchBuilder(cond dto.MemberSearchCondition) *dsl.Builder {
	b := dsl.NewBuilder()
	if hasText(cond.Username) {
		b.And(entity.Members.Username.Eq(*cond.Username))
	}
	if hasText(cond.TeamName) {
		b.And(entity.Teams.Name.Eq(*cond.TeamName))
	}
	if cond.AgeGoe != nil {
		b.And(entity.Members.Age.Goe(*cond.AgeGoe))
	}
	if cond.AgeLoe != nil {
		b.And(entity.Members.Age.Loe(*cond.AgeLoe))
	}
	return b
}
