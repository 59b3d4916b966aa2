package platform

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJobDB(t *testing.T, rundir string) {
	t.Helper()
	dbPath := filepath.Join(rundir, DBRelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(dbPath), 0o755))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE task_jobs (
		cycle TEXT, name TEXT, submit_num INTEGER, platform_name TEXT
	)`)
	require.NoError(t, err)

	for _, row := range []struct {
		cycle, name string
		submitNum   int
		platform    string
	}{
		{"1", "bar", 1, "localhost"},
		{"1", "baz", 1, "hpc1"},
		{"1", "bar", 2, "hpc2"},
		{"2", "bar", 1, "other"},
	} {
		_, err = db.Exec(
			`INSERT INTO task_jobs (cycle, name, submit_num, platform_name) VALUES (?, ?, ?, ?)`,
			row.cycle, row.name, row.submitNum, row.platform,
		)
		require.NoError(t, err)
	}
}

func TestPlatformsFromTaskJobs(t *testing.T) {
	rundir := t.TempDir()
	seedJobDB(t, rundir)

	platforms, err := PlatformsFromTaskJobs(context.Background(), rundir, "1")
	require.NoError(t, err)

	// The latest submission wins per task.
	assert.Equal(t, map[string]string{
		"bar": "hpc2",
		"baz": "hpc1",
	}, platforms)
}

func TestPlatformsFromTaskJobsOtherCycle(t *testing.T) {
	rundir := t.TempDir()
	seedJobDB(t, rundir)

	platforms, err := PlatformsFromTaskJobs(context.Background(), rundir, "2")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bar": "other"}, platforms)

	platforms, err = PlatformsFromTaskJobs(context.Background(), rundir, "3")
	require.NoError(t, err)
	assert.Empty(t, platforms)
}

func TestPlatformsFromTaskJobsMissingDB(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PlatformsFromTaskJobs(ctx, t.TempDir(), "1")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
}
