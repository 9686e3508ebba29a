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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type widgetBox struct {
	bun.BaseModel `bun:"table:widget_box,alias:wb"`

	ID    int64  `bun:"box_id,pk,autoincrement"`
	Label string `bun:"label,notnull"`
}

type widget struct {
	bun.BaseModel `bun:"table:widget,alias:w"`

	ID    int64  `bun:"widget_id,pk,autoincrement"`
	Name  string `bun:"name,notnull,unique"`
	BoxID *int64 `bun:"box_id"`
}

func init() {
	RegisteredModel(NewModelAdapter((*widget)(nil), 20))
	RegisteredModel(NewModelAdapter((*widgetBox)(nil), 10))
}

func memoryConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg.ConnectionConfig.DBName = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	cfg.ConnectionConfig.SlowQueryTime = 0
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func widgetForeignKeys(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "fk.yaml")
	writeFile(t, path, `
foreign_keys:
  - table: widget
    column: box_id
    reference_table: widget_box
    reference_column: box_id
    on_delete: cascade
`)
	return path
}

func connect(t *testing.T, cfg *Config) AbstractDatabaseManager {
	t.Helper()
	dm := NewDatabaseManager(cfg)
	require.NoError(t, dm.Connect(context.Background()))
	t.Cleanup(func() { _ = dm.Disconnect() })
	return dm
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", SQLiteDSN(""))
	assert.Equal(t, ":memory:", SQLiteDSN(":memory:"))
	assert.Equal(t, "file:x?mode=memory", SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "roster.db", SQLiteDSN("roster"))
	assert.Equal(t, "data/roster.db", SQLiteDSN("data/roster.db"))
}

func TestIsSqlError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   bool
		kind SQLError
	}{
		{"no rows", fmt.Errorf("find member: %w", sql.ErrNoRows), true, NoRowsErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, DuplicateKeyErr},
		{"mysql fk", &mysql.MySQLError{Number: 1452}, true, ForeignKeyViolationErr},
		{"pq duplicate", &pq.Error{Code: "23505"}, true, DuplicateKeyErr},
		{"pq missing table", fmt.Errorf("wrapped: %w", &pq.Error{Code: "42P01"}), true, NoTableErr},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: widget.name (2067)"), true, DuplicateKeyErr},
		{"sqlite no table", errors.New("SQL logic error: no such table: member (1)"), true, NoTableErr},
		{"sqlite not null", errors.New("NOT NULL constraint failed: member.age"), true, NotNullViolationErr},
		{"unrelated", errors.New("boom"), false, UnknownErr},
		{"nil", nil, false, UnknownErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is, kind := IsSqlError(tc.err)
			assert.Equal(t, tc.is, is)
			assert.Equal(t, tc.kind, kind, kind.String())
		})
	}
}

func TestForeignKeyClause(t *testing.T) {
	fk := DefaultForeignKeys()[0]
	query, args := fk.Clause()
	assert.Equal(t, "(?) REFERENCES ? (?) ON DELETE SET NULL", query)
	assert.Equal(t, []interface{}{bun.Ident("team_id"), bun.Ident("team"), bun.Ident("team_id")}, args)
	assert.Equal(t, "fk_member_team_id", fk.GenerateConstraintName())
}

func TestConfigurableForeignKeys(t *testing.T) {
	fkm, err := NewConfigurableForeignKeyManager(nil, widgetForeignKeys(t))
	require.NoError(t, err)
	assert.Empty(t, fkm.ValidateConstraints())
	require.Len(t, fkm.GetConstraintsByTable("WIDGET"), 1)
	assert.Empty(t, fkm.GetConstraintsByTable("widget_box"))

	bad := &ForeignKeyManager{constraints: []ForeignKeyConstraint{{Table: "widget", OnDelete: "explode"}}}
	assert.Len(t, bad.ValidateConstraints(), 4)

	_, err = NewConfigurableForeignKeyManager(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestModelRegistryOrdersByPriority(t *testing.T) {
	r := newModelRegistry()
	r.Register(NewModelAdapter((*widget)(nil), 2))
	r.Register(NewModelAdapter((*widgetBox)(nil), 1))
	r.Register(NewModelAdapter((*widget)(nil), 0))

	models := r.Models()
	require.Len(t, models, 2)
	assert.IsType(t, (*widgetBox)(nil), models[0].Instance())
	assert.IsType(t, (*widget)(nil), models[1].Instance())
}

func TestSplitSQLStatements(t *testing.T) {
	stmts := splitSQLStatements(`
-- boxes
INSERT INTO widget_box (label)
  VALUES ('a');
INSERT INTO widget_box (label) VALUES ('b');
INSERT INTO widget_box (label) VALUES ('c')`)
	assert.Equal(t, []string{
		"INSERT INTO widget_box (label) VALUES ('a')",
		"INSERT INTO widget_box (label) VALUES ('b')",
		"INSERT INTO widget_box (label) VALUES ('c')",
	}, stmts)
	assert.Equal(t, 7, parseFileOrder("007_boxes.sql"))
	assert.Equal(t, 999, parseFileOrder("boxes.sql"))
}

func TestManagerConnectAndHealth(t *testing.T) {
	dm := connect(t, memoryConfig(t))
	ctx := context.Background()

	require.NoError(t, dm.Ping(ctx))
	status := dm.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 100, dm.GetStats().MaxOpenConns)

	require.NoError(t, dm.Disconnect())
	assert.ErrorIs(t, dm.Ping(ctx), ErrNotConnected)
	assert.False(t, dm.HealthCheck(ctx).Healthy)
}

func TestPrivateMemoryUsesSingleConnection(t *testing.T) {
	cfg := DefaultConfig()
	dm := connect(t, cfg)
	assert.Equal(t, 1, dm.GetStats().MaxOpenConns)
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConnectionConfig.Type = "oracle"
	_, err := NewDatabaseFactory().CreateFromConfig(cfg)
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestRunMigrationsCreatesTablesWithForeignKeys(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.DataMigrateConfig.ForeignKeyFile = widgetForeignKeys(t)
	dm := connect(t, cfg)
	ctx := context.Background()

	require.NoError(t, dm.RunMigrations(ctx))
	// second run is a no-op
	require.NoError(t, dm.RunMigrations(ctx))

	db := dm.GetDB()
	applied, err := NewMigrationManager(db, cfg, nil).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "create_base_tables", applied[0].Name)

	var ddl string
	require.NoError(t, db.NewRaw("SELECT sql FROM sqlite_master WHERE name = ?", "widget").Scan(ctx, &ddl))
	assert.Contains(t, ddl, "REFERENCES")
	assert.Contains(t, ddl, "ON DELETE CASCADE")
}

func TestRunMigrationsSeedsData(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "common", "001_boxes.sql"), "INSERT INTO widget_box (label) VALUES ('common');\n")
	writeFile(t, filepath.Join(root, "environments", "test", "001_boxes.sql"), "INSERT INTO widget_box (label) VALUES ('{{.ENVIRONMENT}}');\n")
	writeFile(t, filepath.Join(root, "environments", "prod", "001_boxes.sql"), "INSERT INTO widget_box (label) VALUES ('prod');\n")

	cfg := memoryConfig(t)
	cfg.DataMigrateConfig.EnableForeignKey = false
	cfg.DataInitConfig = DataInitConfig{AutoInitOnMigration: true, Filepath: root, Environment: "test"}
	dm := connect(t, cfg)
	ctx := context.Background()
	require.NoError(t, dm.RunMigrations(ctx))

	var labels []string
	require.NoError(t, dm.GetDB().NewSelect().Model((*widgetBox)(nil)).Column("label").Order("box_id").Scan(ctx, &labels))
	assert.Equal(t, []string{"common", "test"}, labels)
}

func TestSQLInitStopsOnFailure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "common", "001_ok.sql"), "INSERT INTO widget_box (label) VALUES ('kept');")
	writeFile(t, filepath.Join(root, "common", "002_bad.sql"), "INSERT INTO widget_box (label) VALUES ('lost');\nINSERT INTO nowhere VALUES (1);")

	cfg := memoryConfig(t)
	dm := connect(t, cfg)
	ctx := context.Background()
	require.NoError(t, dm.RunMigrations(ctx))

	m := NewSQLInitManager(dm.GetDB(), "none")
	m.SetSQLRootPath(root)
	err := m.ExecuteInitialization(ctx)
	require.Error(t, err)
	is, kind := IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, NoTableErr, kind)

	count, err := dm.GetDB().NewSelect().Model((*widgetBox)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunInTx(t *testing.T) {
	dm := connect(t, memoryConfig(t))
	ctx := context.Background()
	require.NoError(t, dm.RunMigrations(ctx))
	db := dm.GetDB()

	errStop := errors.New("stop")
	err := RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&widgetBox{Label: "rolled back"}).Exec(ctx); err != nil {
			return err
		}
		return errStop
	})
	assert.ErrorIs(t, err, errStop)

	require.NoError(t, RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&widgetBox{Label: "committed"}).Exec(ctx)
		return err
	}))

	var labels []string
	require.NoError(t, db.NewSelect().Model((*widgetBox)(nil)).Column("label").Scan(ctx, &labels))
	assert.Equal(t, []string{"committed"}, labels)
}

func TestMetricsHook(t *testing.T) {
	dm := connect(t, memoryConfig(t))
	ctx := context.Background()
	require.NoError(t, dm.RunMigrations(ctx))

	hook := NewMetricsHook(prometheus.NewRegistry())
	db := dm.GetDB()
	db.AddQueryHook(hook)

	_, err := db.NewSelect().Model((*widget)(nil)).Count(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&widget{}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&widget{}).Exec(ctx)
	require.Error(t, err)

	queries, duration := hook.Collectors()
	assert.Equal(t, 1.0, testutil.ToFloat64(queries.WithLabelValues("select", "widget", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(queries.WithLabelValues("insert", "widget", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(queries.WithLabelValues("insert", "widget", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(duration))
}
