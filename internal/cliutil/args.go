// Package cliutil holds the argument handling shared by the three overlay
// binaries: absolute-path validation and the mandated startup debug line,
// grounded on main() in original_source/versfs.c and original_source/caesarfs.c.
package cliutil

import (
	"fmt"
	"io"
	"os"

	"github.com/scttfrdmn/versfs/pkg/utils"
)

// Args is the common argument shape every overlay binary parses: a backing
// directory and a mount point, both required to be absolute paths
// (spec.md §6, following versfs.c's check — caesarfs.c never added the same
// check for its own two directory arguments, which SPEC_FULL.md treats as a
// bug the reimplementation fixes uniformly across all three variants).
type Args struct {
	BackingDir string
	MountPoint string
}

// Parse validates backingDir and mountPoint, returning an error that names
// the offending argument ("backing directory" or "mount point") when either
// is empty or not absolute. The error carries no USAGE prefix; callers
// print it themselves.
func Parse(backingDir, mountPoint string) (Args, error) {
	if err := utils.RequireAbsolute("backing directory", backingDir); err != nil {
		return Args{}, err
	}
	if err := utils.RequireAbsolute("mount point", mountPoint); err != nil {
		return Args{}, err
	}
	return Args{BackingDir: backingDir, MountPoint: mountPoint}, nil
}

// Usage prints a USAGE line to stderr and returns exit code 1, matching the
// original's argc-check branch in main().
func Usage(prog, synopsis string) int {
	fmt.Fprintf(os.Stderr, "USAGE: %s %s\n", prog, synopsis)
	return 1
}

// LogMount emits the mandated startup debug line (spec.md §6) to w,
// preserving the original's literal "DEBUG: Mounting ..." wording rather
// than routing it through the leveled Logger's "[LEVEL] ..." framing, since
// this line's exact text is part of the contract the original programs
// printed on every mount. detail, when non-empty, appends the cipher key
// the way the cipher variant's main() does; mirror and versioned pass "".
func LogMount(w io.Writer, backingDir, mountPoint, detail string) {
	if detail == "" {
		fmt.Fprintf(w, "DEBUG: Mounting %s at %s\n", backingDir, mountPoint)
		return
	}
	fmt.Fprintf(w, "DEBUG: Mounting %s at %s using key %s\n", backingDir, mountPoint, detail)
}
