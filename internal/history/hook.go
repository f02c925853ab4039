package history

import "github.com/scttfrdmn/versfs/internal/config"

// Hook wires Builder and Reaper into an overlay.WriteHook, giving the
// versioned variant its snapshot-on-write and reap-on-unlink behavior around
// the otherwise-identical passthrough path (spec §4.4, §4.5, §4.8).
type Hook struct {
	BackingRoot string
	Builder     Builder
	Reaper      Reaper
}

// NewHook constructs a Hook rooted at backingRoot, carrying layout's counter
// cap and directory mode through to the Registry every Builder.Snapshot call
// uses.
func NewHook(backingRoot string, layout config.Layout) Hook {
	registry := Registry{CounterDigits: layout.CounterDigits, DirMode: layout.DirMode}
	return Hook{
		BackingRoot: backingRoot,
		Builder:     Builder{Registry: registry},
	}
}

// BeforeWrite snapshots the file's content as of this write before the live
// write is allowed to proceed.
func (h Hook) BeforeWrite(vpath string, data []byte, offset int64) error {
	return h.Builder.Snapshot(h.BackingRoot, vpath, data, offset)
}

// AfterUnlink removes vpath's entire history once its live file is gone.
func (h Hook) AfterUnlink(vpath string) error {
	return h.Reaper.Remove(h.BackingRoot, vpath)
}
