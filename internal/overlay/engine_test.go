package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingHook struct {
	key int
}

func (h recordingHook) EncodeForStorage(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b + byte(h.key)
	}
	return out
}

func (h recordingHook) DecodeFromStorage(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b - byte(h.key)
	}
	return out
}

type vetoHook struct {
	writeErr  error
	unlinkErr error
	seen      []string
	unlinked  []string
}

func (h *vetoHook) BeforeWrite(vpath string, data []byte, offset int64) error {
	h.seen = append(h.seen, vpath)
	return h.writeErr
}

func (h *vetoHook) AfterUnlink(vpath string) error {
	h.unlinked = append(h.unlinked, vpath)
	return h.unlinkErr
}

func TestMapComposesBackingRootAndVirtualPath(t *testing.T) {
	require.Equal(t, "/backing/foo.txt", Map("/backing", "/foo.txt"))
}

func TestEngineGetattrReportsRegularFile(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(backing, "f.txt"), []byte("hello"), 0644))

	e := New(backing, nil, nil)
	info, err := e.Getattr("/f.txt")
	require.NoError(t, err)
	require.Equal(t, int64(5), info.Size())
}

func TestEngineReaddirHidesHistoryRootAtMountRoot(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(backing, HistoryRootName), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(backing, "visible.txt"), nil, 0644))

	e := New(backing, nil, nil)
	entries, err := e.Readdir("/")
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	require.Equal(t, []string{"visible.txt"}, names)
}

func TestEngineReaddirDoesNotHideHistoryRootBelowMountRoot(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(backing, "sub"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(backing, "sub", HistoryRootName), 0755))

	e := New(backing, nil, nil)
	entries, err := e.Readdir("/sub")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, HistoryRootName, entries[0].Name())
}

func TestEngineWriteThenReadRoundTripsWithoutContentHook(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(backing, "f.txt"), []byte("0123456789"), 0644))

	e := New(backing, nil, nil)
	n, err := e.Write("/f.txt", []byte("XY"), 3)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	buf := make([]byte, 4)
	n, err = e.Read("/f.txt", buf, 2)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "2XY5", string(buf))
}

func TestEngineWriteThenReadRoundTripsThroughContentHook(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(backing, "f.txt"), make([]byte, 5), 0644))

	e := New(backing, recordingHook{key: 3}, nil)
	n, err := e.Write("/f.txt", []byte("hi"), 0)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	raw, err := os.ReadFile(filepath.Join(backing, "f.txt"))
	require.NoError(t, err)
	require.NotEqual(t, "hi", string(raw[:2]))

	buf := make([]byte, 2)
	_, err = e.Read("/f.txt", buf, 0)
	require.NoError(t, err)
	require.Equal(t, "hi", string(buf))
}

func TestEngineWriteConsultsWriteHookBeforeTouchingLiveFile(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(backing, "f.txt"), []byte("original"), 0644))

	hook := &vetoHook{}
	e := New(backing, nil, hook)
	_, err := e.Write("/f.txt", []byte("new"), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"/f.txt"}, hook.seen)
}

func TestEngineWriteAbortsWhenWriteHookErrors(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(backing, "f.txt"), []byte("original"), 0644))

	boom := os.ErrInvalid
	hook := &vetoHook{writeErr: boom}
	e := New(backing, nil, hook)
	_, err := e.Write("/f.txt", []byte("new"), 0)
	require.ErrorIs(t, err, boom)

	raw, err := os.ReadFile(filepath.Join(backing, "f.txt"))
	require.NoError(t, err)
	require.Equal(t, "original", string(raw))
}

func TestEngineUnlinkInvokesAfterUnlinkHook(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(backing, "f.txt"), nil, 0644))

	hook := &vetoHook{}
	e := New(backing, nil, hook)
	err := e.Unlink("/f.txt")
	require.NoError(t, err)
	require.Equal(t, []string{"/f.txt"}, hook.unlinked)

	_, statErr := os.Stat(filepath.Join(backing, "f.txt"))
	require.True(t, os.IsNotExist(statErr))
}

func TestEngineMknodRejectsExistingRegularFile(t *testing.T) {
	backing := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(backing, "f.txt"), nil, 0644))

	e := New(backing, nil, nil)
	err := e.Mknod("/f.txt", 0100644, 0)
	require.Error(t, err)
}
