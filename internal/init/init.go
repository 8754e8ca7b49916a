// Package initcmd writes starter mindmap configuration files.
package initcmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/npratt/mindmap/internal/config"
)

// ErrChanged is returned when existing files differ from the templates and
// Force is not set.
var ErrChanged = errors.New("files have changes (use --force to overwrite)")

// Options configures the init command behavior.
type Options struct {
	DryRun  bool
	Force   bool
	Minimal bool      // Write only the backend and source settings
	Global  bool      // Write the user config instead of the project one
	Writer  io.Writer // Defaults to os.Stdout
}

// InstallFile is a file to be written, relative to the target directory.
type InstallFile struct {
	Path    string
	Content string
}

// Result lists what happened to each file, by relative path.
type Result struct {
	TargetDir   string
	Created     []string
	Overwritten []string
	Unchanged   []string
	Skipped     []string
}

// fileStatus compares an InstallFile with what is on disk.
type fileStatus struct {
	InstallFile
	exists bool
	diff   string // Empty when the file is missing or unchanged
}

func (s fileStatus) changed() bool {
	return s.exists && s.diff != ""
}

// BuildFileList returns the files to install. Project installs also get a
// .gitignore for the files the viewer writes next to the config.
func BuildFileList(minimal, global bool) []InstallFile {
	tmpl := "config.yaml"
	if minimal {
		tmpl = "config-minimal.yaml"
	}
	files := []InstallFile{{Path: config.ProjectConfigFile, Content: MustReadTemplate(tmpl)}}
	if !global {
		files = append(files, InstallFile{Path: ".gitignore", Content: MustReadTemplate("gitignore")})
	}
	return files
}

// TargetDir returns the directory the files are written to.
func TargetDir(global bool) (string, error) {
	if global {
		return config.GlobalDir()
	}
	return config.ProjectConfigDir, nil
}

// Run installs the configuration files. Existing files that differ are
// only replaced with Force; without it their diffs are printed and
// ErrChanged is returned.
func Run(opts Options) (*Result, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	targetDir, err := TargetDir(opts.Global)
	if err != nil {
		return nil, err
	}
	statuses, err := checkFiles(targetDir, BuildFileList(opts.Minimal, opts.Global))
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return dryRun(w, targetDir, statuses), nil
	}

	if !opts.Force {
		var changed bool
		for _, s := range statuses {
			changed = changed || s.changed()
		}
		if changed {
			return showChanges(w, targetDir, statuses), ErrChanged
		}
	}

	return install(w, targetDir, statuses)
}

func checkFiles(targetDir string, files []InstallFile) ([]fileStatus, error) {
	statuses := make([]fileStatus, 0, len(files))
	for _, f := range files {
		s := fileStatus{InstallFile: f}
		existing, err := os.ReadFile(filepath.Join(targetDir, f.Path))
		switch {
		case err == nil:
			s.exists = true
			s.diff = UnifiedDiff("existing", "new", string(existing), f.Content)
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read %s: %w", f.Path, err)
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func dryRun(w io.Writer, targetDir string, statuses []fileStatus) *Result {
	_, _ = fmt.Fprintln(w, "DRY RUN - No changes will be made")
	_, _ = fmt.Fprintln(w)

	result := &Result{TargetDir: targetDir}
	for _, s := range statuses {
		path := filepath.Join(targetDir, s.Path)
		switch {
		case !s.exists:
			_, _ = fmt.Fprintf(w, "Would create: %s\n", path)
			_, _ = fmt.Fprintln(w, "--- BEGIN FILE ---")
			_, _ = fmt.Fprint(w, s.Content)
			_, _ = fmt.Fprintln(w, "--- END FILE ---")
			result.Created = append(result.Created, s.Path)
		case s.changed():
			_, _ = fmt.Fprintf(w, "Would overwrite (has changes): %s\n", path)
			_, _ = fmt.Fprint(w, s.diff)
			result.Skipped = append(result.Skipped, s.Path)
		default:
			_, _ = fmt.Fprintf(w, "Already up to date: %s\n", path)
			result.Unchanged = append(result.Unchanged, s.Path)
		}
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Run without --dry-run to apply changes.")
	return result
}

func showChanges(w io.Writer, targetDir string, statuses []fileStatus) *Result {
	result := &Result{TargetDir: targetDir}

	_, _ = fmt.Fprintln(w, "The following files have changes:")
	_, _ = fmt.Fprintln(w)
	for _, s := range statuses {
		if !s.changed() {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s:\n", filepath.Join(targetDir, s.Path))
		_, _ = fmt.Fprintln(w, s.diff)
		result.Skipped = append(result.Skipped, s.Path)
	}
	for _, s := range statuses {
		if s.exists && !s.changed() {
			result.Unchanged = append(result.Unchanged, s.Path)
		}
	}
	_, _ = fmt.Fprintln(w, "Use --force to overwrite changed files.")
	return result
}

func install(w io.Writer, targetDir string, statuses []fileStatus) (*Result, error) {
	result := &Result{TargetDir: targetDir}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return result, fmt.Errorf("create directory %s: %w", targetDir, err)
	}

	for _, s := range statuses {
		path := filepath.Join(targetDir, s.Path)
		if s.exists && !s.changed() {
			_, _ = fmt.Fprintf(w, "Already up to date: %s\n", path)
			result.Unchanged = append(result.Unchanged, s.Path)
			continue
		}
		if err := os.WriteFile(path, []byte(s.Content), 0644); err != nil {
			return result, fmt.Errorf("write %s: %w", path, err)
		}
		if s.exists {
			_, _ = fmt.Fprintf(w, "Overwrote: %s\n", path)
			result.Overwritten = append(result.Overwritten, s.Path)
		} else {
			_, _ = fmt.Fprintf(w, "Created: %s\n", path)
			result.Created = append(result.Created, s.Path)
		}
	}
	return result, nil
}
