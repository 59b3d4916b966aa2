// Package platform answers "which platform did this task's job run on" by
// reading the workflow's job database.
package platform

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "modernc.org/sqlite"

	"github.com/cylc/cylc-rose/internal/logging"
)

// DBRelPath locates the job database inside a run directory.
const DBRelPath = ".service/db"

const (
	retryInterval = time.Second
	maxRetries    = 4
)

// LookupError reports a failed platform lookup.
type LookupError struct {
	RunDir     string
	CyclePoint string
	Err        error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf(
		"platform lookup failed for cycle %s in %s: %v",
		e.CyclePoint, e.RunDir, e.Err,
	)
}

func (e *LookupError) Unwrap() error { return e.Err }

// PlatformsFromTaskJobs returns the platform name of the most recent job
// submission for every task at the given cycle point. The database is shared
// with the live workflow, so reads are retried on transient failure (locked
// or busy database).
func PlatformsFromTaskJobs(ctx context.Context, rundir, cyclePoint string) (map[string]string, error) {
	dbPath := filepath.Join(rundir, DBRelPath)

	var platforms map[string]string
	query := func() error {
		var err error
		platforms, err = queryTaskJobs(ctx, dbPath, cyclePoint)
		if err != nil {
			logging.Debug().Err(err).Str("db", dbPath).Msg("job database read failed, retrying")
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), maxRetries),
		ctx,
	)
	if err := backoff.Retry(query, policy); err != nil {
		return nil, &LookupError{RunDir: rundir, CyclePoint: cyclePoint, Err: err}
	}
	return platforms, nil
}

func queryTaskJobs(ctx context.Context, dbPath, cyclePoint string) (map[string]string, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT name, platform_name, submit_num FROM task_jobs WHERE cycle = ?`,
		cyclePoint,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type submission struct {
		num      int
		platform string
	}
	latest := map[string]submission{}
	for rows.Next() {
		var name, platformName string
		var submitNum int
		if err := rows.Scan(&name, &platformName, &submitNum); err != nil {
			return nil, err
		}
		if prev, ok := latest[name]; !ok || prev.num < submitNum {
			latest[name] = submission{num: submitNum, platform: platformName}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	platforms := make(map[string]string, len(latest))
	for name, sub := range latest {
		platforms[name] = sub.platform
	}
	return platforms, nil
}
