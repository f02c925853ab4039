package history

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scttfrdmn/versfs/pkg/errors"
)

// defaultCounterDigits bounds the decimal ASCII counter at two digits, so
// the counter record tops out at 99 and the highest assignable version is
// 98 (spec §9's counter-width open question, resolved in SPEC_FULL.md §D:
// the 100th write to the same file, which would need version 99 and a
// counter of 100, fails rather than silently truncating or growing the
// field beyond what
// vers_write's fixed two-byte pwrite can represent). It is the value used
// whenever a Registry's CounterDigits is left at its zero value.
const defaultCounterDigits = 2

// Registry advances next_vers.txt for a file, lazily creating the history
// root and the file's own history directory the first time it is touched
// (spec §4.4). It holds no state of its own beyond its configured digit
// cap and directory mode: every call re-derives paths from backingRoot and vpath, matching the
// original's per-call path reconstruction in vers_write.
type Registry struct {
	// CounterDigits overrides defaultCounterDigits when positive, wiring
	// internal/config.Layout.CounterDigits through to the cap enforced
	// here.
	CounterDigits int

	// DirMode overrides defaultDirMode when nonzero, wiring
	// internal/config.Layout.DirMode through to newly created history
	// directories.
	DirMode os.FileMode
}

const defaultDirMode = os.FileMode(0755)

func (r Registry) maxDigits() int {
	if r.CounterDigits > 0 {
		return r.CounterDigits
	}
	return defaultCounterDigits
}

func (r Registry) dirMode() os.FileMode {
	if r.DirMode != 0 {
		return r.DirMode
	}
	return defaultDirMode
}

// Advance assigns the next version number for vpath, returning it along
// with the previous version (nil if this is the file's first snapshot), and
// persists the incremented counter before returning.
func (r Registry) Advance(backingRoot, vpath string) (assigned int, previous *int, err error) {
	if _, mkErr := ensureDir(Root(backingRoot), r.dirMode()); mkErr != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeIO, "history", "advance", vpath, mkErr)
	}

	histDir := Dir(backingRoot, vpath)
	if mkErr := os.MkdirAll(filepath.Dir(histDir), r.dirMode()); mkErr != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeIO, "history", "advance", vpath, mkErr)
	}
	created, mkErr := ensureDir(histDir, r.dirMode())
	if mkErr != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeIO, "history", "advance", vpath, mkErr)
	}

	counterPath := CounterFile(histDir)
	if created {
		if werr := os.WriteFile(counterPath, []byte("0"), 0600); werr != nil {
			return 0, nil, errors.Wrap(errors.ErrCodeIO, "history", "advance", vpath, werr)
		}
	}

	f, oerr := os.OpenFile(counterPath, os.O_RDWR, 0600)
	if oerr != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeIO, "history", "advance", vpath, oerr)
	}
	defer f.Close()

	buf := make([]byte, 3)
	n, rerr := f.ReadAt(buf, 0)
	if rerr != nil && rerr != io.EOF {
		return 0, nil, errors.Wrap(errors.ErrCodeIO, "history", "advance", vpath, rerr)
	}

	assigned, perr := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if perr != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeHistoryCorrupt, "history", "advance", vpath, perr)
	}
	if assigned > 0 {
		p := assigned - 1
		previous = &p
	}

	next := strconv.Itoa(assigned + 1)
	if len(next) > r.maxDigits() {
		return 0, nil, errors.New(errors.ErrCodeVersionLimitReached, "history", "advance", vpath)
	}
	if _, werr := f.WriteAt([]byte(next), 0); werr != nil {
		return 0, nil, errors.Wrap(errors.ErrCodeIO, "history", "advance", vpath, werr)
	}

	return assigned, previous, nil
}

// ensureDir creates path with the given mode, reporting whether it was
// newly created. An already-existing directory is not an error (spec §9's
// first-write registry initialization race, resolved in SPEC_FULL.md §D).
func ensureDir(path string, mode os.FileMode) (created bool, err error) {
	if err := os.Mkdir(path, mode); err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
