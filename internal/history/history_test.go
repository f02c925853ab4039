package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAdvanceFirstWriteStartsAtZero(t *testing.T) {
	backing := t.TempDir()

	assigned, previous, err := Registry{}.Advance(backing, "/foo.txt")
	require.NoError(t, err)
	require.Equal(t, 0, assigned)
	require.Nil(t, previous)

	raw, err := os.ReadFile(CounterFile(Dir(backing, "/foo.txt")))
	require.NoError(t, err)
	require.Equal(t, "1", string(raw))
}

func TestRegistryAdvanceIncrementsAcrossCalls(t *testing.T) {
	backing := t.TempDir()

	for want := 0; want < 5; want++ {
		assigned, previous, err := Registry{}.Advance(backing, "/foo.txt")
		require.NoError(t, err)
		require.Equal(t, want, assigned)
		if want == 0 {
			require.Nil(t, previous)
		} else {
			require.NotNil(t, previous)
			require.Equal(t, want-1, *previous)
		}
	}
}

func TestRegistryAdvanceIsolatesDistinctFiles(t *testing.T) {
	backing := t.TempDir()

	assignedA, _, err := Registry{}.Advance(backing, "/a.txt")
	require.NoError(t, err)
	assignedB, _, err := Registry{}.Advance(backing, "/b.txt")
	require.NoError(t, err)

	require.Equal(t, 0, assignedA)
	require.Equal(t, 0, assignedB)
}

func TestRegistryAdvanceFailsPastCounterCap(t *testing.T) {
	backing := t.TempDir()
	histDir := Dir(backing, "/foo.txt")
	require.NoError(t, os.MkdirAll(histDir, 0755))
	require.NoError(t, os.WriteFile(CounterFile(histDir), []byte("99"), 0600))

	_, _, err := Registry{}.Advance(backing, "/foo.txt")
	require.Error(t, err)
}

func TestBuilderSnapshotAtOffsetZero(t *testing.T) {
	backing := t.TempDir()
	b := Builder{}

	err := b.Snapshot(backing, "/foo.txt", []byte("hello"), 0)
	require.NoError(t, err)

	histDir := Dir(backing, "/foo.txt")
	content, err := os.ReadFile(SnapshotFile(histDir, "/foo.txt", 0))
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestBuilderSnapshotMergesInteriorOffset(t *testing.T) {
	backing := t.TempDir()
	b := Builder{}

	require.NoError(t, b.Snapshot(backing, "/foo.txt", []byte("hello"), 0))
	require.NoError(t, b.Snapshot(backing, "/foo.txt", []byte(" world"), 5))

	histDir := Dir(backing, "/foo.txt")
	content, err := os.ReadFile(SnapshotFile(histDir, "/foo.txt", 1))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(content))
}

func TestBuilderSnapshotFirstWriteAtInteriorOffsetZeroFillsPrefix(t *testing.T) {
	backing := t.TempDir()
	b := Builder{}

	require.NoError(t, b.Snapshot(backing, "/foo.txt", []byte("end"), 4))

	histDir := Dir(backing, "/foo.txt")
	content, err := os.ReadFile(SnapshotFile(histDir, "/foo.txt", 0))
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0, 'e', 'n', 'd'}, content)
}

func TestReaperRemoveDeletesAllSnapshotsAndHistDir(t *testing.T) {
	backing := t.TempDir()
	b := Builder{}

	require.NoError(t, b.Snapshot(backing, "/foo.txt", []byte("v0"), 0))
	require.NoError(t, b.Snapshot(backing, "/foo.txt", []byte("v1"), 0))
	require.NoError(t, b.Snapshot(backing, "/foo.txt", []byte("v2"), 0))

	histDir := Dir(backing, "/foo.txt")
	require.DirExists(t, histDir)

	require.NoError(t, Reaper{}.Remove(backing, "/foo.txt"))

	_, err := os.Stat(histDir)
	require.True(t, os.IsNotExist(err))
}

func TestReaperRemoveOnNeverWrittenFileIsNoop(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, Reaper{}.Remove(backing, "/never-written.txt"))
}

func TestDirAndSnapshotFileComposeForNestedPaths(t *testing.T) {
	backing := t.TempDir()
	histDir := Dir(backing, "/dir/foo.txt")
	require.Equal(t, filepath.Join(backing, ".vers", "dir", "foo.txt_hist"), histDir)

	snap := SnapshotFile(histDir, "/dir/foo.txt", 3)
	require.Equal(t, filepath.Join(histDir, "foo.txt,3"), snap)
}
