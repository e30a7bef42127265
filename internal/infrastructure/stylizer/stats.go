package stylizer

import (
	"image"
	"math"
)

// stats holds the per-channel mean and standard deviation of an RGB image.
type stats struct {
	mean [3]float64
	std  [3]float64
}

func channelStats(img *image.NRGBA) stats {
	var sum, sumSq [3]float64
	n := 0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			v := float64(img.Pix[i+ch])
			sum[ch] += v
			sumSq[ch] += v * v
		}
		n++
	}

	var st stats
	if n == 0 {
		return st
	}
	for ch := 0; ch < 3; ch++ {
		m := sum[ch] / float64(n)
		variance := sumSq[ch]/float64(n) - m*m
		if variance < 0 {
			variance = 0
		}
		st.mean[ch] = m
		st.std[ch] = math.Sqrt(variance)
	}
	return st
}

// transferColor shifts every channel of src from the src distribution to the
// target distribution and mixes the result with src by strength.
func transferColor(src *image.NRGBA, from, to stats, strength float64) *image.NRGBA {
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}

	var scale [3]float64
	for ch := 0; ch < 3; ch++ {
		if from.std[ch] < 1e-6 {
			scale[ch] = 1
		} else {
			scale[ch] = to.std[ch] / from.std[ch]
		}
	}

	dst := image.NewNRGBA(src.Rect)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			v := float64(src.Pix[i+ch])
			shifted := (v-from.mean[ch])*scale[ch] + to.mean[ch]
			dst.Pix[i+ch] = clamp(v*(1-strength) + shifted*strength)
		}
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
