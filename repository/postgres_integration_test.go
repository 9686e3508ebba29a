//go:build integration

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/dto"
	"github.com/tomoncle/roster/entity"
	"github.com/tomoncle/roster/types"
	"github.com/uptrace/bun"
)

// openPostgres starts a throwaway postgres and returns it migrated.
func openPostgres(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "roster",
				"POSTGRES_USER":     "roster",
				"POSTGRES_PASSWORD": "roster",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "postgres"
	cfg.ConnectionConfig.Host = host
	cfg.ConnectionConfig.Port = port.Int()
	cfg.ConnectionConfig.Username = "roster"
	cfg.ConnectionConfig.Password = "roster"
	cfg.ConnectionConfig.DBName = "roster"
	cfg.ConnectionConfig.SSLMode = "disable"
	cfg.ConnectionConfig.SlowQueryTime = 0

	dm := database.NewDatabaseManager(cfg)
	require.NoError(t, dm.Connect(ctx))
	t.Cleanup(func() { _ = dm.Disconnect() })
	require.NoError(t, dm.RunMigrations(ctx))
	return dm.GetDB()
}

func TestPostgresMemberRepository(t *testing.T) {
	db := openPostgres(t)
	f := studyFixture(t, db, true)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	rows, err := repo.Search(ctx, dto.MemberSearchCondition{
		AgeGoe:   types.Ptr(35),
		AgeLoe:   types.Ptr(40),
		TeamName: types.Ptr("B"),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.members["memberC"].ID, rows[0].MemberID)

	rows, err = repo.Search(ctx, dto.MemberSearchCondition{})
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	page, err := repo.SearchPageComplex(ctx, dto.MemberSearchCondition{}, types.NewDefaultPageRequest(2, 3))
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)

	count, err := repo.BulkRenameOlderThan(ctx, 15, "member")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.BulkAddAge(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestPostgresQueriesAndUpsert(t *testing.T) {
	db := openPostgres(t)
	f := basicFixture(t, db)
	queries := NewMemberQueryRepository(db)
	ctx := context.Background()

	stats, err := queries.AgeStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), stats.Sum)
	assert.InDelta(t, 12.5, stats.Avg, 0.0001)

	labels, err := queries.UsernameAgeLabels(ctx, "memberD")
	require.NoError(t, err)
	assert.Equal(t, []string{"memberD_15"}, labels)

	saveMembers(t, db, &entity.Member{Age: 15})
	sorted, err := queries.FindByAgeSorted(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"memberC", "memberD", "<nil>"}, memberNames(sorted))

	teams := NewTeamRepository(db)
	require.NoError(t, teams.Upsert(ctx, []string{"name"}, nil, &entity.Team{ID: f.teams["A"].ID, Name: "Amber"}))
	team, err := teams.GetOne(ctx, f.teams["A"].ID)
	require.NoError(t, err)
	assert.Equal(t, "Amber", team.Name)

	_, err = db.NewInsert().Model(&entity.Member{Age: 1, TeamID: types.Ptr(int64(999))}).Exec(ctx)
	is, kind := database.IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, database.ForeignKeyViolationErr, kind)
}
