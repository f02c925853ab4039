// Package fuse adapts an internal/overlay.Engine to the cgofuse transport
// binding (github.com/winfsp/cgofuse), so the same engine can be mounted on
// Linux, macOS, or Windows without a platform-specific filesystem
// implementation. Grounded on internal/fuse/cgofuse_filesystem.go of the
// teacher, which wires the same library's FileSystemInterface against a
// backend in the same shape; here the backend is an overlay.Engine over a
// local directory rather than an S3 object store.
package fuse

import (
	"os"
	"syscall"
	"time"

	"github.com/winfsp/cgofuse/fuse"
	"golang.org/x/sys/unix"

	"github.com/scttfrdmn/versfs/internal/metrics"
	"github.com/scttfrdmn/versfs/internal/overlay"
	"github.com/scttfrdmn/versfs/pkg/errors"
	"github.com/scttfrdmn/versfs/pkg/utils"
)

// Adapter implements fuse.FileSystemInterface by forwarding every request to
// an overlay.Engine and translating Go errors into cgofuse's negative-errno
// int convention. It holds no open-file state of its own, matching
// invariant I6: the engine never retains file descriptors across requests.
type Adapter struct {
	fuse.FileSystemBase

	Engine  *overlay.Engine
	Log     *utils.Logger
	Metrics *metrics.Collector
}

// NewAdapter constructs an Adapter over engine. A nil logger degrades to
// utils.Default(); a nil collector degrades to a disabled Collector that
// records nothing.
func NewAdapter(engine *overlay.Engine, log *utils.Logger, collector *metrics.Collector) *Adapter {
	if log == nil {
		log = utils.Default()
	}
	if collector == nil {
		collector, _ = metrics.NewCollector(nil)
	}
	return &Adapter{Engine: engine, Log: log, Metrics: collector}
}

// finish records op's duration and outcome, logs a failure, then translates
// err into cgofuse's negative-errno convention, grounded on the
// "defer fs.recordOperation(...)" pattern in cgofuse_filesystem.go.
func (a *Adapter) finish(op, path string, start time.Time, err error) int {
	a.Metrics.RecordOperation(op, time.Since(start), err == nil)
	if err == nil {
		return 0
	}
	a.Log.Error("%s %s: %v", op, path, err)
	return -int(errors.Errno(err))
}

func (a *Adapter) Getattr(path string, stat *fuse.Stat_t, fh uint64) int {
	start := time.Now()
	info, err := a.Engine.Getattr(path)
	if err != nil {
		return a.finish("getattr", path, start, err)
	}
	fillStat(stat, info)
	return a.finish("getattr", path, start, nil)
}

func (a *Adapter) Access(path string, mask uint32) int {
	start := time.Now()
	return a.finish("access", path, start, a.Engine.Access(path, mask))
}

func (a *Adapter) Readlink(path string) (int, string) {
	start := time.Now()
	target, err := a.Engine.Readlink(path)
	return a.finish("readlink", path, start, err), target
}

func (a *Adapter) Readdir(path string, fill func(name string, stat *fuse.Stat_t, ofst int64) bool,
	ofst int64, fh uint64) int {
	start := time.Now()
	entries, err := a.Engine.Readdir(path)
	if err != nil {
		return a.finish("readdir", path, start, err)
	}
	fill(".", nil, 0)
	fill("..", nil, 0)
	for _, entry := range entries {
		if !fill(entry.Name(), nil, 0) {
			break
		}
	}
	return a.finish("readdir", path, start, nil)
}

func (a *Adapter) Mknod(path string, mode uint32, dev uint64) int {
	start := time.Now()
	return a.finish("mknod", path, start, a.Engine.Mknod(path, mode, dev))
}

func (a *Adapter) Mkdir(path string, mode uint32) int {
	start := time.Now()
	return a.finish("mkdir", path, start, a.Engine.Mkdir(path, mode))
}

func (a *Adapter) Rmdir(path string) int {
	start := time.Now()
	return a.finish("rmdir", path, start, a.Engine.Rmdir(path))
}

func (a *Adapter) Unlink(path string) int {
	start := time.Now()
	return a.finish("unlink", path, start, a.Engine.Unlink(path))
}

func (a *Adapter) Symlink(target string, newpath string) int {
	start := time.Now()
	return a.finish("symlink", newpath, start, a.Engine.Symlink(target, newpath))
}

func (a *Adapter) Link(oldpath string, newpath string) int {
	start := time.Now()
	return a.finish("link", newpath, start, a.Engine.Link(oldpath, newpath))
}

func (a *Adapter) Rename(oldpath string, newpath string) int {
	start := time.Now()
	return a.finish("rename", oldpath, start, a.Engine.Rename(oldpath, newpath))
}

func (a *Adapter) Chmod(path string, mode uint32) int {
	start := time.Now()
	return a.finish("chmod", path, start, a.Engine.Chmod(path, mode))
}

func (a *Adapter) Chown(path string, uid uint32, gid uint32) int {
	start := time.Now()
	return a.finish("chown", path, start, a.Engine.Chown(path, int(uid), int(gid)))
}

func (a *Adapter) Truncate(path string, size int64, fh uint64) int {
	start := time.Now()
	return a.finish("truncate", path, start, a.Engine.Truncate(path, size))
}

func (a *Adapter) Utimens(path string, tmsp []fuse.Timespec) int {
	start := time.Now()
	if len(tmsp) != 2 {
		return a.finish("utimens", path, start, syscall.EINVAL)
	}
	atime := unixTimespec(tmsp[0])
	mtime := unixTimespec(tmsp[1])
	return a.finish("utimens", path, start, a.Engine.Utimens(path, atime, mtime))
}

func (a *Adapter) Create(path string, flags int, mode uint32) (int, uint64) {
	start := time.Now()
	err := a.Engine.Mknod(path, syscall.S_IFREG|mode, 0)
	return a.finish("create", path, start, err), 0
}

func (a *Adapter) Open(path string, flags int) (int, uint64) {
	start := time.Now()
	err := a.Engine.Open(path, flags)
	return a.finish("open", path, start, err), 0
}

func (a *Adapter) Read(path string, buff []byte, ofst int64, fh uint64) int {
	start := time.Now()
	n, err := a.Engine.Read(path, buff, ofst)
	if err != nil {
		return a.finish("read", path, start, err)
	}
	a.finish("read", path, start, nil)
	return n
}

func (a *Adapter) Write(path string, buff []byte, ofst int64, fh uint64) int {
	start := time.Now()
	n, err := a.Engine.Write(path, buff, ofst)
	if err != nil {
		return a.finish("write", path, start, err)
	}
	a.finish("write", path, start, nil)
	return n
}

func (a *Adapter) Release(path string, fh uint64) int {
	start := time.Now()
	return a.finish("release", path, start, a.Engine.Release(path))
}

func (a *Adapter) Fsync(path string, datasync bool, fh uint64) int {
	start := time.Now()
	return a.finish("fsync", path, start, a.Engine.Fsync(path))
}

func (a *Adapter) Statfs(path string, stat *fuse.Statfs_t) int {
	start := time.Now()
	st, err := a.Engine.Statfs(path)
	if err != nil {
		return a.finish("statfs", path, start, err)
	}
	fillStatfs(stat, st)
	return a.finish("statfs", path, start, nil)
}

func (a *Adapter) Setxattr(path string, name string, value []byte, flags int) int {
	start := time.Now()
	return a.finish("setxattr", path, start, a.Engine.Setxattr(path, name, value, flags))
}

func (a *Adapter) Getxattr(path string, name string) (int, []byte) {
	start := time.Now()
	dest := make([]byte, 4096)
	n, err := a.Engine.Getxattr(path, name, dest)
	if err != nil {
		return a.finish("getxattr", path, start, err), nil
	}
	return a.finish("getxattr", path, start, nil), dest[:n]
}

func (a *Adapter) Listxattr(path string, fill func(name string) bool) int {
	start := time.Now()
	dest := make([]byte, 4096)
	n, err := a.Engine.Listxattr(path, dest)
	if err != nil {
		return a.finish("listxattr", path, start, err)
	}
	for _, name := range splitNulTerminated(dest[:n]) {
		if !fill(name) {
			break
		}
	}
	return a.finish("listxattr", path, start, nil)
}

func (a *Adapter) Removexattr(path string, name string) int {
	start := time.Now()
	return a.finish("removexattr", path, start, a.Engine.Removexattr(path, name))
}

func fillStat(stat *fuse.Stat_t, info os.FileInfo) {
	sys, ok := info.Sys().(*syscall.Stat_t)
	stat.Mode = uint32(info.Mode().Perm())
	switch {
	case info.IsDir():
		stat.Mode |= fuse.S_IFDIR
	case info.Mode()&os.ModeSymlink != 0:
		stat.Mode |= fuse.S_IFLNK
	default:
		stat.Mode |= fuse.S_IFREG
	}
	stat.Size = info.Size()
	mtime := info.ModTime()
	stat.Mtim.Sec = mtime.Unix()
	stat.Mtim.Nsec = int64(mtime.Nanosecond())
	if ok {
		stat.Uid = sys.Uid
		stat.Gid = sys.Gid
		stat.Nlink = uint32(sys.Nlink)
		stat.Atim.Sec = sys.Atim.Sec
		stat.Atim.Nsec = sys.Atim.Nsec
		stat.Ctim.Sec = sys.Ctim.Sec
		stat.Ctim.Nsec = sys.Ctim.Nsec
	} else {
		stat.Nlink = 1
	}
}

func fillStatfs(dst *fuse.Statfs_t, src *syscall.Statfs_t) {
	dst.Bsize = uint64(src.Bsize)
	dst.Blocks = src.Blocks
	dst.Bfree = src.Bfree
	dst.Bavail = src.Bavail
	dst.Files = src.Files
	dst.Ffree = src.Ffree
	dst.Namemax = uint64(src.Namelen)
}

func unixTimespec(ts fuse.Timespec) unix.Timespec {
	return unix.NsecToTimespec(ts.Sec*1e9 + ts.Nsec)
}

func splitNulTerminated(buf []byte) []string {
	var names []string
	start := 0
	for i, b := range buf {
		if b == 0 {
			if i > start {
				names = append(names, string(buf[start:i]))
			}
			start = i + 1
		}
	}
	return names
}
