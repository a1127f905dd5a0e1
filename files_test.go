package grayarch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles(t *testing.T) {
	dir := t.TempDir()

	writeBMP(t, dir, "b.bmp", testRaster(t, 3, 3))
	for name, content := range map[string]string{
		"a.barch":     "BA",
		"C.BMP":       "BM",
		"notes.txt":   "text",
		"picture.png": "png",
		".hidden.bmp": "BM",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.bmp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub.bmp", "nested.bmp"), []byte("BM"), 0o644))

	files, err := ListFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		assert.True(t, filepath.IsAbs(f.Path))
		assert.False(t, f.Processing)
	}
	assert.Equal(t, []string{"C.BMP", "a.barch", "b.bmp"}, names)

	assert.Equal(t, "bmp", files[0].Extension)
	assert.Equal(t, "barch", files[1].Extension)
	assert.Equal(t, int64(2), files[1].Size)
	assert.Equal(t, int64(54+1024+4*3), files[2].Size)
}

func TestListFilesMissing(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}
