package history

import (
	"io"
	"os"

	"github.com/scttfrdmn/versfs/pkg/errors"
)

// Builder constructs the on-disk snapshot for a write, reusing a Registry to
// assign the version number the snapshot is filed under (spec §4.5).
type Builder struct {
	Registry Registry
}

// Snapshot advances vpath's version counter and persists a new snapshot file
// representing the file's content immediately after this write is applied.
//
// A write at offset 0 snapshots exactly the bytes being written — the
// pre-write content is irrelevant because this write replaces it from the
// start (spec §4.5, "offset 0" case). A write at a nonzero offset must
// instead reproduce the prefix the live file already held: the builder reads
// up to offset bytes from the previous version's snapshot and lays the new
// data down at [offset, offset+len(data)), grounded on the "MY CODE" branch
// of vers_write in original_source/versfs.c. If there is no previous
// snapshot to read a prefix from — a first write landing past offset 0 — the
// prefix is left as zero bytes rather than treated as an error, matching
// ordinary sparse-file semantics.
func (b Builder) Snapshot(backingRoot, vpath string, data []byte, offset int64) error {
	assigned, previous, err := b.Registry.Advance(backingRoot, vpath)
	if err != nil {
		return err
	}

	histDir := Dir(backingRoot, vpath)
	snapPath := SnapshotFile(histDir, vpath, assigned)

	if offset == 0 {
		if err := os.WriteFile(snapPath, data, 0600); err != nil {
			return errors.Wrap(errors.ErrCodeIO, "history", "snapshot", vpath, err)
		}
		return nil
	}

	content := make([]byte, offset+int64(len(data)))
	if previous != nil {
		prevPath := SnapshotFile(histDir, vpath, *previous)
		if err := readPrefix(prevPath, content[:offset]); err != nil {
			return errors.Wrap(errors.ErrCodeIO, "history", "snapshot", vpath, err)
		}
	}
	copy(content[offset:], data)

	if err := os.WriteFile(snapPath, content, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeIO, "history", "snapshot", vpath, err)
	}
	return nil
}

// readPrefix fills dest with as much of the named file's leading bytes as
// exist, leaving the remainder zeroed on a short read.
func readPrefix(path string, dest []byte) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	_, err = f.ReadAt(dest, 0)
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}
