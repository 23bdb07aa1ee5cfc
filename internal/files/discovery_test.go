package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"togo.csv", "benin.CSV", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.csv"), 0755))

	names, err := FindCSVFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"benin.CSV", "togo.csv"}, names)
}

func TestFindCSVFilesMissingDir(t *testing.T) {
	_, err := FindCSVFiles(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
