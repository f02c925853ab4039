package fuse

import (
	"fmt"
	"sync"

	"github.com/winfsp/cgofuse/fuse"

	"github.com/scttfrdmn/versfs/internal/metrics"
	"github.com/scttfrdmn/versfs/internal/overlay"
	"github.com/scttfrdmn/versfs/pkg/utils"
)

// Host mounts an overlay.Engine at a mount point via cgofuse, grounded on
// CgoFuseFS.Mount/Unmount of the teacher — same library, same Mount/Unmount
// shape — but wrapping an Adapter instead of an S3-backed filesystem.
type Host struct {
	mountPoint string
	host       *fuse.FileSystemHost

	mu      sync.Mutex
	mounted bool
}

// NewHost constructs a Host that mounts engine at mountPoint when Mount is
// called.
func NewHost(engine *overlay.Engine, mountPoint string, log *utils.Logger, collector *metrics.Collector) *Host {
	adapter := NewAdapter(engine, log, collector)
	return &Host{
		mountPoint: mountPoint,
		host:       fuse.NewFileSystemHost(adapter),
	}
}

// Mount blocks until the filesystem is mounted or mounting fails; the FUSE
// request loop then continues running until Unmount is called or the
// process exits. Run it in its own goroutine when the caller needs to keep
// going afterward.
func (h *Host) Mount(options []string) error {
	h.mu.Lock()
	if h.mounted {
		h.mu.Unlock()
		return fmt.Errorf("already mounted at %s", h.mountPoint)
	}
	h.mounted = true
	h.mu.Unlock()

	if !h.host.Mount(h.mountPoint, options) {
		h.mu.Lock()
		h.mounted = false
		h.mu.Unlock()
		return fmt.Errorf("mount at %s failed", h.mountPoint)
	}
	return nil
}

// Unmount requests that the mounted filesystem be torn down.
func (h *Host) Unmount() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.mounted {
		return fmt.Errorf("not mounted")
	}
	if !h.host.Unmount() {
		return fmt.Errorf("unmount of %s failed", h.mountPoint)
	}
	h.mounted = false
	return nil
}

// IsMounted reports whether Mount has completed successfully and Unmount
// has not yet been called.
func (h *Host) IsMounted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mounted
}
