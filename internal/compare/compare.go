package compare

import (
	"fmt"
	"image"
)

// Empty marks the pixel value treated as background in the real photo.
type Empty [4]uint8

// Score measures how closely a rendered image matches a real photo.
// Pixels whose value in the REAL image equals empty are background and
// skipped; of the rest, the returned score is the fraction whose mean
// absolute per-channel RGB difference stays below threshold.
//
// Both images must have the same dimensions. An image pair with no
// comparable pixels is an error, not a zero score.
func Score(real, rendered *image.NRGBA, empty Empty, threshold float64) (float64, error) {
	rb, db := real.Bounds(), rendered.Bounds()
	if rb.Dx() != db.Dx() || rb.Dy() != db.Dy() {
		return 0, fmt.Errorf("compare: size mismatch: real %dx%d, rendered %dx%d",
			rb.Dx(), rb.Dy(), db.Dx(), db.Dy())
	}

	w, h := rb.Dx(), rb.Dy()
	compared := 0
	below := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ri := real.PixOffset(rb.Min.X+x, rb.Min.Y+y)
			di := rendered.PixOffset(db.Min.X+x, db.Min.Y+y)

			if real.Pix[ri] == empty[0] && real.Pix[ri+1] == empty[1] &&
				real.Pix[ri+2] == empty[2] && real.Pix[ri+3] == empty[3] {
				continue
			}

			compared++
			diff := absDiff(real.Pix[ri], rendered.Pix[di]) +
				absDiff(real.Pix[ri+1], rendered.Pix[di+1]) +
				absDiff(real.Pix[ri+2], rendered.Pix[di+2])
			if float64(diff)/3 < threshold {
				below++
			}
		}
	}

	if compared == 0 {
		return 0, fmt.Errorf("compare: no comparable pixels (entire real image equals the empty value)")
	}
	return float64(below) / float64(compared), nil
}

// Blend overlays a quarter-strength render on a three-quarter-strength
// photo, for eyeballing alignment. Images must have equal dimensions.
func Blend(real, rendered *image.NRGBA) (*image.NRGBA, error) {
	rb, db := real.Bounds(), rendered.Bounds()
	if rb.Dx() != db.Dx() || rb.Dy() != db.Dy() {
		return nil, fmt.Errorf("compare: size mismatch: real %dx%d, rendered %dx%d",
			rb.Dx(), rb.Dy(), db.Dx(), db.Dy())
	}

	out := image.NewNRGBA(image.Rect(0, 0, rb.Dx(), rb.Dy()))
	for y := 0; y < rb.Dy(); y++ {
		for x := 0; x < rb.Dx(); x++ {
			ri := real.PixOffset(rb.Min.X+x, rb.Min.Y+y)
			di := rendered.PixOffset(db.Min.X+x, db.Min.Y+y)
			oi := out.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				out.Pix[oi+c] = 3*(real.Pix[ri+c]/4) + rendered.Pix[di+c]/4
			}
			out.Pix[oi+3] = 255
		}
	}
	return out, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
