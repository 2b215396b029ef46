//go:build gocv

package kernels

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-composite/images"
)

// kernelMat copies k, already divided by its divisor, into a CV_32F matrix.
func kernelMat(k Kernel) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetFloatAt(r, c, k.Weights[r][c]/k.Divisor)
		}
	}
	return m
}

// redChannelMat copies the red channel of img into a CV_32F matrix.
func redChannelMat(img *images.Image) gocv.Mat {
	m := gocv.NewMatWithSize(img.Height(), img.Width(), gocv.MatTypeCV32F)
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			m.SetFloatAt(y, x, img.At(x, y).R)
		}
	}
	return m
}

func TestConvolveMatchesOpenCVFilter2D(t *testing.T) {
	img := genImage(23, 17, false)
	src := redChannelMat(img)
	defer src.Close()

	for _, kind := range []Kind{KindSmooth, KindSharpen, KindLaplacian} {
		t.Run(kind.String(), func(t *testing.T) {
			k, ok := ForKind(kind)
			assert.True(t, ok)

			km := kernelMat(k)
			defer km.Close()

			dst := gocv.NewMat()
			defer dst.Close()
			gocv.Filter2D(src, &dst, gocv.MatTypeCV32F, km, image.Pt(-1, -1), 0, gocv.BorderReplicate)

			out := Apply(kind, img, Options{Edge: EdgeClamp})
			for y := 0; y < img.Height(); y++ {
				for x := 0; x < img.Width(); x++ {
					assert.InDelta(t, dst.GetFloatAt(y, x), out.At(x, y).R, 1e-4, "pixel (%d, %d)", x, y)
				}
			}
		})
	}
}
