package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker/internal/config"
	"github.com/yukikurage/task-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingLogger keeps the Info messages gorm is asked to print
type recordingLogger struct {
	infos []string
}

func (l *recordingLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l *recordingLogger) Info(_ context.Context, msg string, args ...interface{}) {
	l.infos = append(l.infos, fmt.Sprintf(msg, args...))
}

func (l *recordingLogger) Warn(context.Context, string, ...interface{})  {}
func (l *recordingLogger) Error(context.Context, string, ...interface{}) {}

func (l *recordingLogger) Trace(context.Context, time.Time, func() (string, int64), error) {}

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		":memory:":                  ":memory:?_foreign_keys=on",
		"file:test.db?cache=shared": "file:test.db?cache=shared&_foreign_keys=on",
		"test.db?_foreign_keys=on":  "test.db?_foreign_keys=on",
	}
	for in, want := range cases {
		assert.Equal(t, want, sqliteDSN(in), in)
	}
}

func TestMigrateDatabase_Idempotent(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, MigrateDatabase(db))
	require.NoError(t, MigrateDatabase(db))

	assert.True(t, db.Migrator().HasIndex("tasks", "idx_tasks_status"))
	assert.True(t, db.Migrator().HasIndex("task_categories", "idx_task_categories_category_id"))
	assert.True(t, db.Migrator().HasTable(&models.TaskCategory{}))

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracker.db")
	cfg := &config.Config{DBDriver: "sqlite", DBPath: path, DBLogLevel: "silent"}

	db, err := Open(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	assert.DirExists(t, filepath.Dir(path))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateDatabase_LogsThroughGormLogger(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer Close(db)

	rec := &recordingLogger{}
	require.NoError(t, MigrateDatabase(db.Session(&gorm.Session{Logger: rec})))

	assert.Contains(t, rec.infos, "Running database migrations...")
	assert.Contains(t, rec.infos, "Database migrations completed")
	assert.Contains(t, rec.infos, "Created index idx_tasks_status on tasks(status)")

	rec.infos = nil
	require.NoError(t, MigrateDatabase(db.Session(&gorm.Session{Logger: rec})))
	assert.NotContains(t, rec.infos, "Created index idx_tasks_status on tasks(status)")
}
