package migrate

import (
	"sort"

	"github.com/hupe1980/pupilrec/media"
)

// interpolate evaluates the piecewise linear function through (xs, ys) at
// every point of at. xs must be ascending. Points outside the range are
// extrapolated from the first or last segment.
func interpolate(xs, ys, at []float64) []float64 {
	out := make([]float64, len(at))
	switch len(xs) {
	case 0:
		return out
	case 1:
		for i := range out {
			out[i] = ys[0]
		}
		return out
	}
	last := len(xs) - 1
	for i, x := range at {
		j := sort.SearchFloat64s(xs, x)
		switch {
		case j == 0:
			j = 1
		case j > last:
			j = last
		}
		x0, x1 := xs[j-1], xs[j]
		y0, y1 := ys[j-1], ys[j]
		if x1 == x0 {
			out[i] = y0
			continue
		}
		out[i] = y0 + (x-x0)*(y1-y0)/(x1-x0)
	}
	return out
}

// reinterpolateAudio maps timestamps of the input audio frames onto the
// frames of the transcoded stream.
func reinterpolateAudio(old []float64, stats media.AudioStats) []float64 {
	inSize := float64(stats.InFrameSize)
	if stats.InFrames > 0 && len(old) != stats.InFrames {
		inSize /= float64(len(old)) / float64(stats.InFrames)
	}
	scale := 1.0
	if stats.InRate > 0 {
		scale = float64(stats.OutRate) / float64(stats.InRate)
	}
	oldIdx := make([]float64, len(old))
	for i := range oldIdx {
		oldIdx[i] = float64(i) * inSize * scale
	}
	newIdx := make([]float64, stats.OutFrames)
	for i := range newIdx {
		newIdx[i] = float64(i * stats.OutFrameSize)
	}
	return interpolate(oldIdx, old, newIdx)
}
