package images

import (
	"crypto/md5"
	"fmt"
	"image"
)

// ComputeChecksum generates a deterministic checksum over the 8-bit pixels of
// img. Two renders with identical output produce identical checksums.
//
// Arguments:
// - img: The image to hash.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for a nil or empty image.
//
// Example:
//
// ```go
//
//	checksum := ComputeChecksum(frame.NRGBA())
//	fmt.Printf("Frame checksum: %s\n", checksum)
//
// ```
func ComputeChecksum(img *image.NRGBA) string {
	if img == nil || img.Rect.Empty() {
		return "empty"
	}

	hash := md5.New()
	w := img.Rect.Dx() * 4
	for y := 0; y < img.Rect.Dy(); y++ {
		off := y * img.Stride
		hash.Write(img.Pix[off : off+w])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
