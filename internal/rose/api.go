package rose

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cylc/cylc-rose/internal/fileinstall"
	"github.com/cylc/cylc-rose/internal/logging"
	"github.com/cylc/cylc-rose/internal/rosecfg"
)

// GetRoseVars loads, layers and processes the Rose configuration for srcdir
// and returns the resulting settings. A directory with no base configuration
// and no CLI overrides yields empty settings; CLI overrides against a
// directory with no base configuration are an error, since there is nothing
// for them to override.
func GetRoseVars(srcdir string, opts *Options, environ map[string]string) (*Settings, error) {
	if !ConfigFileExists(srcdir) {
		if opts.HasRoseOptions() {
			return nil, &NotRoseSuiteError{SrcDir: srcdir}
		}
		return emptySettings(), nil
	}
	tree, err := LoadConfigTree(srcdir, opts, environ)
	if err != nil {
		return nil, err
	}
	return ProcessConfigNode(tree.Node, environ)
}

// FileInstall performs Rose file installation into rundir, driven by the
// file:* sections of the layered configuration found there. A run directory
// without Rose configuration is a no-op.
func FileInstall(rundir string, opts *Options, environ map[string]string) error {
	if !ConfigExists(rundir, opts) {
		return nil
	}
	tree, err := LoadConfigTree(rundir, opts, environ)
	if err != nil {
		return err
	}
	if _, err := ProcessConfigNode(tree.Node, environ); err != nil {
		return err
	}

	hasFileSections := false
	for _, key := range tree.Node.Keys() {
		if strings.HasPrefix(key, "file:") {
			hasFileSections = true
			break
		}
	}
	if !hasFileSections {
		return nil
	}

	tree.Node.Set([]string{"file-install-root"}, rundir)
	return fileinstall.Install(tree.Node, rundir)
}

// CopyConfigFile copies the base configuration file from srcdir into rundir,
// along with any optional fragments under opt/, overwriting copies a previous
// install left there. The fragments must travel with the base file or the
// opts keys it names would dangle in the run directory. Returns false when
// srcdir has no configuration file to copy.
func CopyConfigFile(srcdir, rundir string) (bool, error) {
	if !ConfigFileExists(srcdir) {
		return false, nil
	}
	if err := os.MkdirAll(rundir, 0o755); err != nil {
		return false, err
	}
	if err := copyFile(
		filepath.Join(srcdir, SuiteConfName),
		filepath.Join(rundir, SuiteConfName),
	); err != nil {
		return false, err
	}

	optDir := filepath.Join(srcdir, rosecfg.OptDirName)
	entries, err := os.ReadDir(optDir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	destOpt := filepath.Join(rundir, rosecfg.OptDirName)
	if err := os.MkdirAll(destOpt, 0o755); err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := copyFile(
			filepath.Join(optDir, entry.Name()),
			filepath.Join(destOpt, entry.Name()),
		); err != nil {
			return false, err
		}
	}
	return true, nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}

// PostInstall runs the full post-install flow: copy the base configuration
// into the run directory, record the CLI options used, install files and
// write a timestamped audit snapshot of the effective configuration. Returns
// the audit file path relative to rundir ("" when there was nothing to do).
func PostInstall(srcdir, rundir string, opts *Options, environ map[string]string) (string, error) {
	if !ConfigExists(srcdir, opts) {
		return "", nil
	}

	if _, err := CopyConfigFile(srcdir, rundir); err != nil {
		return "", err
	}
	if _, err := RecordInstallOptions(srcdir, rundir, opts, environ); err != nil {
		return "", err
	}

	// File installation reads the configuration installed into rundir, CLI
	// overrides included via the recorded install options fragment
	// (opt/rose-suite-cylc-install.conf, selected by the "cylc-install" key).
	installOpts := &Options{OptConfKeys: []string{"cylc-install"}}
	if err := FileInstall(rundir, installOpts, environ); err != nil {
		return "", err
	}

	tree, err := LoadConfigTree(rundir, installOpts, environ)
	if err != nil {
		return "", err
	}
	relPath, err := DumpRoseLog(rundir, tree.Node)
	if err != nil {
		return "", err
	}
	logging.Info().Str("path", relPath).Msg("effective configuration recorded")
	return relPath, nil
}
