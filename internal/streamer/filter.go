package streamer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/olist-lakehouse/lakestream/internal/utils"
)

// supportedExtensions is the fixed allow-list of file types mirrored to the
// raw bucket: tabular data and images. Matching is case-insensitive.
var supportedExtensions = mapset.NewSet(
	".csv",
	".jpg",
	".jpeg",
	".png",
	".gif",
	".parquet",
	".json",
)

// HasSupportedExtension reports whether path ends in an allow-listed extension.
func HasSupportedExtension(path string) bool {
	return supportedExtensions.Contains(strings.ToLower(filepath.Ext(path)))
}

// PathFilter decides whether a filesystem entry under the watch root should
// be mirrored.
type PathFilter struct {
	root   string
	ignore *gitignore.GitIgnore
}

func NewPathFilter(root string) *PathFilter {
	return &PathFilter{root: root}
}

// LoadIgnoreFile reads gitignore style exclusion rules. A missing file means
// no extra exclusions.
func (f *PathFilter) LoadIgnoreFile(path string) error {
	if path == "" || !utils.RegularFileExists(path) {
		f.ignore = nil
		return nil
	}

	ignore, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return fmt.Errorf("compile ignore file %q: %w", path, err)
	}
	f.ignore = ignore
	slog.Info("ignore rules loaded", "path", path)
	return nil
}

// SetIgnoreLines replaces the exclusion rules with the given patterns.
func (f *PathFilter) SetIgnoreLines(lines ...string) {
	if len(lines) == 0 {
		f.ignore = nil
		return
	}
	f.ignore = gitignore.CompileIgnoreLines(lines...)
}

// Eligible is true only for regular files (symlinks are followed) with a
// supported extension that no ignore rule excludes. Vanished paths are simply
// not eligible.
func (f *PathFilter) Eligible(path string) bool {
	if !HasSupportedExtension(path) {
		return false
	}
	if !utils.RegularFileExists(path) {
		return false
	}
	if f.isIgnored(path) {
		slog.Debug("filter", "path", path, "reason", "ignore rule")
		return false
	}
	return true
}

// Candidate is the looser check used for watcher events. A path that no
// longer exists still passes so the upload reports it as not found; only
// directories, unsupported extensions and ignored paths are dropped.
func (f *PathFilter) Candidate(path string) bool {
	if !HasSupportedExtension(path) {
		return false
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		slog.Debug("filter", "path", path, "error", err)
		return false
	case info.IsDir():
		return false
	}
	if f.isIgnored(path) {
		slog.Debug("filter", "path", path, "reason", "ignore rule")
		return false
	}
	return true
}

func (f *PathFilter) isIgnored(path string) bool {
	if f.ignore == nil {
		return false
	}
	rel, err := utils.RelSlashPath(f.root, path)
	if err != nil {
		return false
	}
	return f.ignore.MatchesPath(rel)
}
