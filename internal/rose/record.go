package rose

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/cylc/cylc-rose/internal/logging"
	"github.com/cylc/cylc-rose/internal/rosecfg"
)

// InstallConfName is the fixed name of the persisted install record.
const InstallConfName = "rose-suite-cylc-install.conf"

// installRecordComment is attached to the root of every written record.
const installRecordComment = " This file records CLI Options."

// MergeInstallRecord merges a previously persisted install record with a
// newly computed CLI options node. Opts are concatenated (old first) and
// simplified; templating sections are migrated when the dialect changed
// between installs; everything else merges by structural diff, with
// deletions never propagated (new's silence means "leave unchanged").
// Mutates and returns old.
func MergeInstallRecord(old, new *rosecfg.Node) *rosecfg.Node {
	migrateDialectSections(old, new)

	oldOpts := old.Child("opts")
	newOpts := new.Child("opts")
	switch {
	case oldOpts != nil && newOpts != nil:
		newOpts.Value = SimplifyOptsString(oldOpts.Value + " " + newOpts.Value)
	case oldOpts != nil:
		set := new.SetState([]string{"opts"}, oldOpts.Value, oldOpts.State)
		set.Comments = oldOpts.Comments
	}

	diff := rosecfg.NewDiff(old, new)
	diff.DeleteRemoved()
	diff.ApplyTo(old)
	return old
}

// migrateDialectSections moves old's template variables under the dialect
// section the new install uses, for every ordered pair of section names, so
// a workflow that switches dialects does not silently lose its previously
// recorded variables. No warning here: dialect deprecation is reported at
// load time.
func migrateDialectSections(old, new *rosecfg.Node) {
	for _, source := range TemplatingSections {
		for _, target := range TemplatingSections {
			if source == target {
				continue
			}
			oldSec := old.Child(source)
			newSec := new.Child(target)
			if oldSec == nil || newSec == nil ||
				len(oldSec.Keys()) == 0 || len(newSec.Keys()) == 0 {
				continue
			}
			for _, key := range oldSec.Keys() {
				setting := oldSec.Child(key)
				moved := old.SetState([]string{target, key}, setting.Value, setting.State)
				moved.Comments = setting.Comments
			}
			old.Unset(source)
		}
	}
}

// RecordInstallOptions persists the CLI options used for this install to
// opt/rose-suite-cylc-install.conf under rundir, merging with any record
// from a previous install unless a clear was requested. It also appends the
// CLI opts to the installed rose-suite.conf opts line. Returns the written
// record node.
func RecordInstallOptions(srcdir, rundir string, opts *Options, environ map[string]string) (*rosecfg.Node, error) {
	cliNode, err := GetCLIOptsNode(srcdir, opts, environ)
	if err != nil {
		return nil, err
	}

	optDir := filepath.Join(rundir, rosecfg.OptDirName)
	if err := os.MkdirAll(optDir, 0o755); err != nil {
		return nil, err
	}
	recordPath := filepath.Join(optDir, InstallConfName)

	if opts != nil && opts.ClearInstallOptions {
		if err := os.Remove(recordPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	} else if _, err := os.Stat(recordPath); err == nil {
		old, err := rosecfg.Load(recordPath)
		if err != nil {
			return nil, err
		}
		before := rosecfg.DumpString(old)
		cliNode = MergeInstallRecord(old, cliNode)
		logRecordDiff(recordPath, before, rosecfg.DumpString(cliNode))
	}

	cliNode.Comments = []string{installRecordComment}
	if err := rosecfg.Dump(cliNode, recordPath); err != nil {
		return nil, err
	}

	if err := appendInstallOpts(rundir, cliNode); err != nil {
		return nil, err
	}
	return cliNode, nil
}

// appendInstallOpts rewrites the installed rose-suite.conf opts line to
// include the CLI opts and a "(cylc-install)" marker, with a comment
// explaining where the options came from.
func appendInstallOpts(rundir string, cliNode *rosecfg.Node) error {
	confPath := filepath.Join(rundir, SuiteConfName)
	conf := rosecfg.NewNode()
	if _, err := os.Stat(confPath); err == nil {
		loaded, err := rosecfg.Load(confPath)
		if err != nil {
			return err
		}
		conf = loaded
	}

	cliOpts := ""
	if o := cliNode.Child("opts"); o != nil {
		cliOpts = o.Value
	}

	var tokens []string
	if o := conf.Child("opts"); o != nil && o.State == rosecfg.StateNormal {
		tokens = append(tokens, o.Value)
	}
	tokens = append(tokens, cliOpts, "(cylc-install)")

	opts := conf.Set([]string{"opts"}, SimplifyOptsString(joinNonEmpty(tokens)))
	opts.Comments = []string{fmt.Sprintf(
		" Config Options '%s (cylc-install)' from CLI appended to options"+
			" already in `rose-suite.conf`.", cliOpts,
	)}
	return rosecfg.Dump(conf, confPath)
}

// DumpRoseLog dumps a node to a timestamped audit file under the log
// sub-directory of rundir and returns the path relative to rundir.
// Timestamps differ between calls; on a collision the last writer wins,
// which is acceptable for a diagnostic snapshot.
func DumpRoseLog(rundir string, node *rosecfg.Node) (string, error) {
	timestamp := time.Now().Format("20060102T150405Z0700")
	relPath := filepath.Join("log", "conf", timestamp+"-"+SuiteConfName)
	if err := rosecfg.Dump(node, filepath.Join(rundir, relPath)); err != nil {
		return "", err
	}
	return relPath, nil
}

// logRecordDiff logs a unified diff of the install record rewrite.
func logRecordDiff(path, before, after string) {
	if before == after {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	patch := dmp.PatchToText(dmp.PatchMake(before, diffs))
	logging.Debug().Str("path", path).Str("patch", patch).Msg("install record updated")
}

func joinNonEmpty(tokens []string) string {
	out := ""
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += tok
	}
	return out
}
