package publish

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkWritesAtomically(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(dir, "published"))
	require.NoError(t, err)

	w, err := sink.OpenWriter("stats.json")
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"v":1}`))
	require.NoError(t, err)

	// Before Close the final artifact must not exist yet.
	_, err = os.Stat(filepath.Join(dir, "published", "stats.json"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "published", "stats.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "published"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should remain")
}

func TestFileSinkOverwritesPreviousArtifact(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	for _, content := range []string{`{"v":1}`, `{"v":2}`} {
		w, err := sink.OpenWriter("stats.json")
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	data, err := os.ReadFile(filepath.Join(sink.dir, "stats.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))
}
