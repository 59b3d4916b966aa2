// Package fileinstall executes the file:* sections of a Rose configuration,
// creating files, directories and symlinks under an install root.
//
// Each [file:<target>] section names one target path, relative to the root
// unless absolute. The supported settings are:
//
//	source = <path> [<path> ...]   concatenate the sources into the target
//	mode   = auto | mkdir | symlink | symlink+
//
// With no source the target becomes an empty file (or a directory with
// mode=mkdir). Symlink modes link the target at the first source path.
// Ignored sections are skipped.
package fileinstall

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cylc/cylc-rose/internal/logging"
	"github.com/cylc/cylc-rose/internal/rosecfg"
)

const sectionPrefix = "file:"

// InstallError reports a failure to install one target.
type InstallError struct {
	Target string
	Err    error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("file installation failed for %s: %v", e.Target, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// Install walks the file:* sections of node and installs each target under
// destRoot. Sections are processed in declaration order so a later section
// may target a directory an earlier one created.
func Install(node *rosecfg.Node, destRoot string) error {
	for _, key := range node.Keys() {
		if !strings.HasPrefix(key, sectionPrefix) {
			continue
		}
		sec := node.Child(key)
		if sec.State != rosecfg.StateNormal {
			logging.Debug().Str("section", key).Msg("skipping ignored file section")
			continue
		}
		target := strings.TrimPrefix(key, sectionPrefix)
		if err := installTarget(sec, destRoot, target); err != nil {
			return &InstallError{Target: target, Err: err}
		}
	}
	return nil
}

func installTarget(sec *rosecfg.Node, destRoot, target string) error {
	dest := target
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(destRoot, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	mode := sec.GetValue([]string{"mode"}, "auto")
	sources := sourcePaths(sec, destRoot)

	logging.Debug().
		Str("target", dest).
		Str("mode", mode).
		Strs("sources", sources).
		Msg("installing file target")

	switch mode {
	case "mkdir":
		return os.MkdirAll(dest, 0o755)
	case "symlink", "symlink+":
		if len(sources) == 0 {
			return errors.New("symlink mode requires a source")
		}
		if mode == "symlink" {
			if _, err := os.Stat(sources[0]); err != nil {
				return fmt.Errorf("symlink source: %w", err)
			}
		}
		if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return os.Symlink(sources[0], dest)
	case "auto", "":
		return concatSources(dest, sources)
	default:
		return fmt.Errorf("unsupported mode %q", mode)
	}
}

// sourcePaths splits the section's source setting on whitespace and anchors
// relative paths at the install root.
func sourcePaths(sec *rosecfg.Node, destRoot string) []string {
	setting := sec.Child("source")
	if setting == nil || setting.State != rosecfg.StateNormal {
		return nil
	}
	var paths []string
	for _, raw := range strings.Fields(setting.Value) {
		if !filepath.IsAbs(raw) {
			raw = filepath.Join(destRoot, raw)
		}
		paths = append(paths, raw)
	}
	return paths
}

// concatSources writes the concatenation of the source files to dest. With no
// sources dest becomes an empty file.
func concatSources(dest string, sources []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, src := range sources {
		in, err := os.Open(src)
		if err != nil {
			return err
		}
		_, err = io.Copy(out, in)
		in.Close()
		if err != nil {
			return err
		}
	}
	return out.Close()
}
