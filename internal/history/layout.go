// Package history implements the versioned overlay's history bookkeeping: the
// per-file counter and snapshot layout under the hidden history root (spec
// §3, §4.3), the registry that advances a file's version counter (§4.4), the
// builder that constructs each snapshot's content (§4.5), and the reaper that
// garbage-collects a file's history on unlink (§4.8). It is grounded on the
// hist_folder_path/next_vers_path/snap_file_path string construction in
// original_source/versfs.c's vers_write and vers_unlink.
package history

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scttfrdmn/versfs/internal/overlay"
)

const (
	histSuffix    = "_hist"
	counterFile   = "next_vers.txt"
	snapshotComma = ","
)

// Root returns the hidden history root H = B/.vers beneath the backing root.
func Root(backingRoot string) string {
	return filepath.Join(backingRoot, overlay.HistoryRootName)
}

// Dir returns the per-file history directory H/p_hist for the virtual path
// vpath. Unlike the original's flat string concatenation, nested virtual
// paths compose through filepath.Join so a history directory for /a/b lives
// at H/a/b_hist rather than requiring an escaping scheme (spec §9, resolved
// in SPEC_FULL.md §D).
func Dir(backingRoot, vpath string) string {
	rel := strings.TrimPrefix(vpath, "/")
	return filepath.Join(Root(backingRoot), rel+histSuffix)
}

// CounterFile returns the path of the next_vers.txt counter record within a
// file's history directory.
func CounterFile(histDir string) string {
	return filepath.Join(histDir, counterFile)
}

// SnapshotFile returns the path of the version-k snapshot for vpath within
// histDir, named "<basename>,<k>" (spec §4.3). Only the final path segment
// of vpath is used in the filename itself — the nesting, if any, is already
// captured by histDir — so the name never contains a slash.
func SnapshotFile(histDir, vpath string, version int) string {
	base := filepath.Base(vpath)
	return filepath.Join(histDir, fmt.Sprintf("%s%s%d", base, snapshotComma, version))
}
