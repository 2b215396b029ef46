package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-composite/images"
)

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	img := images.Uniform(3, 2, images.Pixel{R: 1, A: 1}).NRGBA()

	for _, name := range []string{"frame-10.png", "frame-2.png", "frame-1.bmp"} {
		require.NoError(t, images.SaveFile(img, filepath.Join(dir, name), images.EncodeOptions{}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, []int{1, 2, 10}, []int{files[0].Frame, files[1].Frame, files[2].Frame})
	assert.Equal(t, images.FormatBMP, files[0].Format)
	assert.Equal(t, images.FormatPNG, files[2].Format)

	for _, f := range files {
		assert.NotEmpty(t, f.Data)
		decoded, err := f.Decode()
		require.NoError(t, err)
		assert.Equal(t, 3, decoded.Width())
	}
}

func TestLoadDirectoryMissing(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFrameOf(t *testing.T) {
	assert.Equal(t, 42, frameOf("frame-0042.png"))
	assert.Equal(t, 7, frameOf("shot7.jpg"))
	assert.Equal(t, -1, frameOf("background.png"))
}
