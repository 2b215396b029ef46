// Package util holds helpers shared by the batch front ends.
package util

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-composite/images"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Format is the format implied by the file extension.
	Format images.ImageFormat
	// Frame is the last number in the file name, or -1 when there is none.
	Frame int
}

// Decode decodes the file contents.
func (f ImageFile) Decode() (*images.Image, error) {
	img, _, err := images.DecodeBytes(f.Data, f.Path)
	return img, err
}

var frameNumber = regexp.MustCompile(`(\d+)\D*$`)

// frameOf extracts the trailing number of a file name such as "frame-0042.png".
func frameOf(name string) int {
	m := frameNumber.FindStringSubmatch(name)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Files are recognized by extension (see images.FormatFromPath); anything
// else is skipped. The result is ordered by frame number, then by name, so
// "frame-2.png" sorts before "frame-10.png".
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The raw bytes of each image file.
// - error: Error if the directory or a file cannot be read.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		format, ok := images.FormatFromPath(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		files = append(files, ImageFile{
			Path:   path,
			Data:   data,
			Format: format,
			Frame:  frameOf(entry.Name()),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Frame != files[j].Frame {
			return files[i].Frame < files[j].Frame
		}
		return files[i].Path < files[j].Path
	})

	return files, nil
}
