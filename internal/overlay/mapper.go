package overlay

// HistoryRootName is the hidden directory at the root of the backing store
// that holds all version bookkeeping (spec §3's H = B/.vers). It lives here,
// not in internal/history, because the directory filter (§4.7) that hides it
// from root listings is part of the passthrough engine, not the history
// package, and both need the same literal name.
const HistoryRootName = ".vers"

// Map translates a mount-relative virtual path into a host-absolute backing
// path by prefixing the configured backing root. Per spec §4.1 this is pure
// string composition: no normalization, no symlink resolution, no cleaning
// of ".." segments. vpath is always expected to begin with "/", as supplied
// by the FUSE transport.
func Map(backingRoot, vpath string) string {
	return backingRoot + vpath
}
