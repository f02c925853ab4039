package history

import (
	"os"
	"strconv"
	"strings"

	"github.com/scttfrdmn/versfs/pkg/errors"
)

// Reaper garbage-collects a file's entire history directory after the live
// file has been unlinked (spec §4.8), grounded on vers_unlink's walk from 0
// up to the current counter value in original_source/versfs.c.
type Reaper struct{}

// Remove deletes every snapshot for vpath, then the counter record, then the
// now-empty history directory. A vpath with no history directory at all —
// it was never written through this mount — is not an error.
func (Reaper) Remove(backingRoot, vpath string) error {
	histDir := Dir(backingRoot, vpath)

	if _, err := os.Stat(histDir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeIO, "history", "reap", vpath, err)
	}

	counterPath := CounterFile(histDir)
	raw, err := os.ReadFile(counterPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, "history", "reap", vpath, err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeHistoryCorrupt, "history", "reap", vpath, err)
	}

	for k := 0; k < count; k++ {
		if err := os.Remove(SnapshotFile(histDir, vpath, k)); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeIO, "history", "reap", vpath, err)
		}
	}
	if err := os.Remove(counterPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeIO, "history", "reap", vpath, err)
	}
	if err := os.Remove(histDir); err != nil {
		return errors.Wrap(errors.ErrCodeIO, "history", "reap", vpath, err)
	}
	return nil
}
