package afero

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgl-project/modelcost/pkg/logging"
)

func TestAtomicFileUpdateWritesAndSkips(t *testing.T) {
	fs := NewMemMapFs()
	log := logging.Discard()

	require.NoError(t, fs.MkdirAll("/out", 0o755))
	require.NoError(t, AtomicFileUpdate(fs, "/out", "data.json", []byte(`{"a":1}`), 0o644, log))

	got, err := ReadFile(fs, "/out/data.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	// Unchanged contents: a second update must still leave the same bytes.
	require.NoError(t, AtomicFileUpdate(fs, "/out", "data.json", []byte(`{"a":1}`), 0o644, log))
	got, err = ReadFile(fs, "/out/data.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestExists(t *testing.T) {
	fs := NewMemMapFs()
	require.NoError(t, WriteFile(fs, "/x.txt", []byte("x"), 0o644))

	ok, err := Exists(fs, "/x.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(fs, "/missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}
