package gesture

import "math"

// sampleRing is a fixed-capacity ring of recent drag samples. Old samples
// are overwritten so long gestures never grow memory; only the trailing
// window matters for the velocity gate.
type sampleRing struct {
	buf   []Sample
	head  int // Next write position
	count int
}

func newSampleRing(capacity int) *sampleRing {
	return &sampleRing{buf: make([]Sample, capacity)}
}

func (r *sampleRing) push(s Sample) {
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *sampleRing) reset() {
	r.head = 0
	r.count = 0
}

func (r *sampleRing) len() int {
	return r.count
}

// at returns the i-th buffered sample, oldest first.
func (r *sampleRing) at(i int) Sample {
	start := r.head - r.count
	if start < 0 {
		start += len(r.buf)
	}
	return r.buf[(start+i)%len(r.buf)]
}

// pathVelocity returns the Euclidean path length over the buffered window,
// scaled to points, divided by the window's elapsed wall time. Returns 0
// when the window spans no time.
func (r *sampleRing) pathVelocity(scale float64) float64 {
	if r.count < 2 {
		return 0
	}
	path := 0.0
	for i := 1; i < r.count; i++ {
		a, b := r.at(i-1), r.at(i)
		dx := (b.Pos.X - a.Pos.X) * scale
		dy := (b.Pos.Y - a.Pos.Y) * scale
		path += math.Hypot(dx, dy)
	}
	elapsed := r.at(r.count - 1).Time.Sub(r.at(0).Time).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return path / elapsed
}
