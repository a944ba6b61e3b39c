package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second * 3
	tick    = time.Millisecond * 10
)

func TestIntegration_ReportScenario(t *testing.T) {
	root := t.TempDir()
	p, err := NewProvider(MapperFunc(func(string) string { return root }), WithLogger(lg))
	require.NoError(t, err)
	defer p.Close()

	h := p.Item(item("report.pdf"))
	assert.False(t, h.Exists())
	_, err = h.Open()
	require.ErrorIs(t, err, ErrNotFound)

	// external writer.
	writeFile(t, h.Path(), "v1")
	assert.True(t, h.Exists())

	s, err := h.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
	assert.Equal(t, 1, h.OpenStreams())

	updated, deleted := &counter{}, &counter{}
	require.NoError(t, h.OnUpdate(updated.callback()))
	require.NoError(t, h.OnDelete(deleted.callback()))

	f, err := os.OpenFile(h.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(" v2")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool { return updated.count() >= 1 }, waitFor, tick)
	assert.Equal(t, Updated, updated.last().Kind)

	require.NoError(t, h.Close(), "stream still open, closed by disposal")
	assert.Equal(t, 0, h.OpenStreams())
	assert.Equal(t, 0, p.Registry().Len())

	// a second handle on the same file observes the delete, the disposed one must not.
	witness := p.Item(item("report.pdf"))
	seen := &counter{}
	require.NoError(t, witness.OnDelete(seen.callback()))

	require.NoError(t, os.Remove(witness.Path()))
	require.Eventually(t, func() bool { return seen.count() >= 1 }, waitFor, tick)
	assert.Equal(t, int64(0), deleted.count())

	require.NoError(t, witness.Close())
}

func TestIntegration_SaveAndDeleteObservable(t *testing.T) {
	root := t.TempDir()
	p, err := NewProvider(RootMapper{Root: root}, WithLogger(lg), WithBufferSize(8))
	require.NoError(t, err)
	defer p.Close()

	h := p.Item(item("docs/notes.txt"))
	created, updated, deleted := &counter{}, &counter{}, &counter{}
	require.NoError(t, h.OnCreate(created.callback()))
	require.NoError(t, h.OnUpdate(updated.callback()))
	require.NoError(t, h.OnDelete(deleted.callback()))

	// docs/ does not exist yet, the watcher picks the directory up on creation.
	require.NoError(t, os.MkdirAll(filepath.Join(p.Base(), "docs"), 0o755))
	time.Sleep(time.Millisecond * 100)

	require.NoError(t, h.Save(strings.NewReader("first")))
	require.Eventually(t, func() bool { return created.count() >= 1 }, waitFor, tick)

	require.NoError(t, h.Save(strings.NewReader("second")))
	require.Eventually(t, func() bool { return updated.count() >= 1 }, waitFor, tick)

	require.NoError(t, h.Delete())
	require.Eventually(t, func() bool { return deleted.count() >= 1 }, waitFor, tick)

	assert.ErrorIs(t, h.Delete(), ErrNotFound)
	require.NoError(t, h.Close())
}
