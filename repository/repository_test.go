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
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/entity"
	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
)

// openDB returns a migrated in-memory sqlite database private to t.
func openDB(t *testing.T) *bun.DB {
	t.Helper()
	cfg := database.DefaultConfig()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	cfg.ConnectionConfig.DBName = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	cfg.ConnectionConfig.SlowQueryTime = 0

	dm := database.NewDatabaseManager(cfg)
	ctx := context.Background()
	require.NoError(t, dm.Connect(ctx))
	t.Cleanup(func() { _ = dm.Disconnect() })
	require.NoError(t, dm.RunMigrations(ctx))
	return dm.GetDB()
}

type fixture struct {
	teams   map[string]*entity.Team
	members map[string]*entity.Member
}

func saveTeams(t *testing.T, db bun.IDB, names ...string) map[string]*entity.Team {
	t.Helper()
	repo := NewTeamRepository(db)
	teams := make(map[string]*entity.Team, len(names))
	for _, name := range names {
		team := entity.NewTeam(name)
		require.NoError(t, repo.Save(context.Background(), team))
		require.NotZero(t, team.ID)
		teams[name] = team
	}
	return teams
}

func saveMembers(t *testing.T, db bun.IDB, members ...*entity.Member) {
	t.Helper()
	repo := NewMemberRepository(db)
	for _, m := range members {
		require.NoError(t, repo.Save(context.Background(), m))
		require.NotZero(t, m.ID)
	}
}

// studyFixture is teams A and B with memberA(10,A), memberB(10,A),
// memberC(38,B) and memberD(13,B). withLoner adds memberE(20) with no team.
func studyFixture(t *testing.T, db bun.IDB, withLoner bool) *fixture {
	t.Helper()
	teams := saveTeams(t, db, "A", "B")
	f := &fixture{teams: teams, members: map[string]*entity.Member{
		"memberA": entity.NewMember("memberA", 10, teams["A"]),
		"memberB": entity.NewMember("memberB", 10, teams["A"]),
		"memberC": entity.NewMember("memberC", 38, teams["B"]),
		"memberD": entity.NewMember("memberD", 13, teams["B"]),
	}}
	saveMembers(t, db, f.members["memberA"], f.members["memberB"], f.members["memberC"], f.members["memberD"])
	if withLoner {
		f.members["memberE"] = entity.NewMember("memberE", 20, nil)
		saveMembers(t, db, f.members["memberE"])
	}
	return f
}

// basicFixture is the study teams with memberC and memberD both aged 15.
func basicFixture(t *testing.T, db bun.IDB) *fixture {
	t.Helper()
	teams := saveTeams(t, db, "A", "B")
	f := &fixture{teams: teams, members: map[string]*entity.Member{
		"memberA": entity.NewMember("memberA", 10, teams["A"]),
		"memberB": entity.NewMember("memberB", 10, teams["A"]),
		"memberC": entity.NewMember("memberC", 15, teams["B"]),
		"memberD": entity.NewMember("memberD", 15, teams["B"]),
	}}
	saveMembers(t, db, f.members["memberA"], f.members["memberB"], f.members["memberC"], f.members["memberD"])
	return f
}

// sampleFixture is ten team-less members.
func sampleFixture(t *testing.T, db bun.IDB) {
	t.Helper()
	saveTeams(t, db, "A", "B")
	rows := []struct {
		name string
		age  int
	}{
		{"T", 10}, {"B", 20}, {"E", 30}, {"Z", 15}, {"T", 17},
		{"S", 12}, {"P", 19}, {"P", 19}, {"M", 29}, {"V", 25},
	}
	for _, r := range rows {
		saveMembers(t, db, entity.NewMember(r.name, r.age, nil))
	}
}

func usernames[T any](rows []T, name func(T) *string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if n := name(r); n != nil {
			out = append(out, *n)
		} else {
			out = append(out, "<nil>")
		}
	}
	return out
}

func memberNames(rows []*entity.Member) []string {
	return usernames(rows, func(m *entity.Member) *string { return m.Username })
}

// countingHook counts statements that compute a row count.
type countingHook struct {
	counts atomic.Int32
}

func (h *countingHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *countingHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if strings.Contains(strings.ToLower(event.Query), "count(*)") {
		h.counts.Add(1)
	}
}

func pageOf(page, size int) *types.PageRequest {
	return types.NewDefaultPageRequest(page, size)
}
