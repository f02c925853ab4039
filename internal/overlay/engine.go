package overlay

import (
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Engine is the shared passthrough skeleton (spec §4.2). It forwards every
// request kind to the equivalent primitive on the backing path, applying the
// variant's ContentHook on the data plane and giving the variant's WriteHook
// a chance to act around write/unlink. All other operations never consult
// either hook, matching invariant I6.
type Engine struct {
	BackingRoot string
	Content     ContentHook
	Write       WriteHook
}

// New creates an Engine rooted at backingRoot. A nil content or write hook
// degrades to identity/no-op, which is exactly how the mirror variant is
// built (spec §4.6).
func New(backingRoot string, content ContentHook, write WriteHook) *Engine {
	return &Engine{BackingRoot: backingRoot, Content: content, Write: write}
}

func (e *Engine) hostPath(vpath string) string {
	return Map(e.BackingRoot, vpath)
}

// Getattr stats the mapped path without following a trailing symlink, so a
// getattr on a symlink describes the link itself (spec §4.2).
func (e *Engine) Getattr(vpath string) (os.FileInfo, error) {
	return os.Lstat(e.hostPath(vpath))
}

// Access performs a host permission check on the mapped path.
func (e *Engine) Access(vpath string, mode uint32) error {
	return syscall.Access(e.hostPath(vpath), mode)
}

// Readlink reads the target of a symlink at the mapped path.
func (e *Engine) Readlink(vpath string) (string, error) {
	return os.Readlink(e.hostPath(vpath))
}

// Readdir enumerates the mapped directory's entries, dropping the hidden
// history root when vpath is the mount point's root (spec §4.7, I5). No
// other filtering is applied.
func (e *Engine) Readdir(vpath string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(e.hostPath(vpath))
	if err != nil {
		return nil, err
	}
	if vpath != "/" {
		return entries, nil
	}
	visible := entries[:0]
	for _, entry := range entries {
		if entry.Name() == HistoryRootName {
			continue
		}
		visible = append(visible, entry)
	}
	return visible, nil
}

// Mknod creates a regular file, FIFO, or other node kind at the mapped path
// (spec §4.2). Regular files are created via exclusive-create-open-close so
// that a concurrent creator of the same name is rejected rather than
// silently truncated.
func (e *Engine) Mknod(vpath string, mode uint32, dev uint64) error {
	hpath := e.hostPath(vpath)
	switch mode & syscall.S_IFMT {
	case syscall.S_IFREG:
		f, err := os.OpenFile(hpath, os.O_CREAT|os.O_EXCL|os.O_WRONLY, os.FileMode(mode&0o777))
		if err != nil {
			return err
		}
		return f.Close()
	case syscall.S_IFIFO:
		return syscall.Mkfifo(hpath, mode)
	default:
		return syscall.Mknod(hpath, mode, int(dev))
	}
}

// Mkdir creates a directory at the mapped path.
func (e *Engine) Mkdir(vpath string, mode uint32) error {
	return syscall.Mkdir(e.hostPath(vpath), mode)
}

// Rmdir removes an empty directory at the mapped path.
func (e *Engine) Rmdir(vpath string) error {
	return syscall.Rmdir(e.hostPath(vpath))
}

// Unlink removes the live file at the mapped path, then — if a WriteHook is
// installed — gives it the chance to garbage-collect any associated history
// (spec §4.8). The live unlink has already succeeded by the time the hook
// runs, so a hook failure is reported but never resurrects the live file.
func (e *Engine) Unlink(vpath string) error {
	if err := syscall.Unlink(e.hostPath(vpath)); err != nil {
		return err
	}
	if e.Write == nil {
		return nil
	}
	return e.Write.AfterUnlink(vpath)
}

// Symlink creates a symlink at the mapped "to" path pointing at the mapped
// "from" target (spec §4.2: "both paths mapped").
func (e *Engine) Symlink(from, to string) error {
	return syscall.Symlink(e.hostPath(from), e.hostPath(to))
}

// Link creates a hard link at the mapped "to" path for the mapped "from"
// path.
func (e *Engine) Link(from, to string) error {
	return syscall.Link(e.hostPath(from), e.hostPath(to))
}

// Rename renames the mapped "from" path to the mapped "to" path.
func (e *Engine) Rename(from, to string) error {
	return syscall.Rename(e.hostPath(from), e.hostPath(to))
}

// Chmod changes the mode of the mapped path.
func (e *Engine) Chmod(vpath string, mode uint32) error {
	return syscall.Chmod(e.hostPath(vpath), mode)
}

// Chown changes ownership of the mapped path without following a trailing
// symlink.
func (e *Engine) Chown(vpath string, uid, gid int) error {
	return syscall.Lchown(e.hostPath(vpath), uid, gid)
}

// Truncate sets the mapped path's size.
func (e *Engine) Truncate(vpath string, size int64) error {
	return syscall.Truncate(e.hostPath(vpath), size)
}

// Utimens sets the mapped path's access and modification times without
// following a trailing symlink.
func (e *Engine) Utimens(vpath string, atime, mtime unix.Timespec) error {
	ts := [2]unix.Timespec{atime, mtime}
	return unix.UtimesNanoAt(unix.AT_FDCWD, e.hostPath(vpath), ts[:], unix.AT_SYMLINK_NOFOLLOW)
}

// Open validates that the mapped path can be opened with the requested
// flags, then immediately closes it: file descriptors are never retained
// across requests (spec §4.2, §5).
func (e *Engine) Open(vpath string, flags int) error {
	f, err := os.OpenFile(e.hostPath(vpath), flags, 0)
	if err != nil {
		return err
	}
	return f.Close()
}

// Read opens the mapped path read-only, performs a positional read into
// buf, closes the file, and applies the content hook's decode step before
// returning. The returned count is the number of bytes actually read.
func (e *Engine) Read(vpath string, buf []byte, offset int64) (int, error) {
	f, err := os.Open(e.hostPath(vpath))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return n, err
	}
	if e.Content != nil {
		copy(buf[:n], e.Content.DecodeFromStorage(buf[:n]))
	}
	return n, nil
}

// Write applies the content hook's encode step, gives the write hook a
// chance to persist history or veto the write (spec §7: history failures
// are fatal to the write before the live file is touched), then performs
// the positional write into the live file. The returned count is the number
// of bytes actually written to the live file, which may be fewer than
// requested on a partial write (spec §7) — that is not treated as an error.
func (e *Engine) Write(vpath string, buf []byte, offset int64) (int, error) {
	data := buf
	if e.Content != nil {
		data = e.Content.EncodeForStorage(buf)
	}
	if e.Write != nil {
		if err := e.Write.BeforeWrite(vpath, data, offset); err != nil {
			return 0, err
		}
	}

	f, err := os.OpenFile(e.hostPath(vpath), os.O_WRONLY, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return f.WriteAt(data, offset)
}

// Statfs reports filesystem statistics for the mapped path.
func (e *Engine) Statfs(vpath string) (*syscall.Statfs_t, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(e.hostPath(vpath), &stat); err != nil {
		return nil, err
	}
	return &stat, nil
}

// Release is a no-op: the engine holds no file descriptor state across
// requests to release.
func (e *Engine) Release(vpath string) error {
	return nil
}

// Fsync is a no-op: every write is already synchronous with respect to the
// backing filesystem at the point Write returns.
func (e *Engine) Fsync(vpath string) error {
	return nil
}

// Fallocate rejects any non-zero mode as unsupported, then performs a
// positional fallocate on the mapped path (spec §4.2, §7).
func (e *Engine) Fallocate(vpath string, mode uint32, offset, length int64) error {
	if mode != 0 {
		return syscall.ENOTSUP
	}
	f, err := os.OpenFile(e.hostPath(vpath), os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return syscall.Fallocate(int(f.Fd()), 0, offset, length)
}

// Setxattr sets an extended attribute on the mapped path without following
// a trailing symlink.
func (e *Engine) Setxattr(vpath, name string, value []byte, flags int) error {
	return unix.Lsetxattr(e.hostPath(vpath), name, value, flags)
}

// Getxattr reads an extended attribute from the mapped path without
// following a trailing symlink.
func (e *Engine) Getxattr(vpath, name string, dest []byte) (int, error) {
	return unix.Lgetxattr(e.hostPath(vpath), name, dest)
}

// Listxattr lists extended attribute names on the mapped path without
// following a trailing symlink.
func (e *Engine) Listxattr(vpath string, dest []byte) (int, error) {
	return unix.Llistxattr(e.hostPath(vpath), dest)
}

// Removexattr removes an extended attribute from the mapped path without
// following a trailing symlink.
func (e *Engine) Removexattr(vpath, name string) error {
	return unix.Lremovexattr(e.hostPath(vpath), name)
}
