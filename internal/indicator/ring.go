package indicator

// ring is a fixed-capacity circular buffer of float64 samples. Capacity is
// chosen at construction; once full, each push evicts the oldest sample.
type ring struct {
	buf  []float64
	head int // index of the oldest sample
	size int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]float64, capacity)}
}

// push appends v, evicting the oldest sample when the buffer is full. It
// returns the evicted sample and whether an eviction happened.
func (r *ring) push(v float64) (evicted float64, wasFull bool) {
	if r.size == len(r.buf) {
		evicted = r.buf[r.head]
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
		return evicted, true
	}
	r.buf[(r.head+r.size)%len(r.buf)] = v
	r.size++
	return 0, false
}

func (r *ring) len() int   { return r.size }
func (r *ring) full() bool { return r.size == len(r.buf) }

// at returns the i-th sample, oldest first. i must be in [0, len).
func (r *ring) at(i int) float64 {
	return r.buf[(r.head+i)%len(r.buf)]
}

// last returns the most recent sample. The buffer must be non-empty.
func (r *ring) last() float64 {
	return r.at(r.size - 1)
}

func (r *ring) max() float64 {
	m := r.at(0)
	for i := 1; i < r.size; i++ {
		if v := r.at(i); v > m {
			m = v
		}
	}
	return m
}

func (r *ring) min() float64 {
	m := r.at(0)
	for i := 1; i < r.size; i++ {
		if v := r.at(i); v < m {
			m = v
		}
	}
	return m
}

// mean returns the arithmetic mean of the buffered samples. The buffer must
// be non-empty.
func (r *ring) mean() float64 {
	sum := 0.0
	for i := 0; i < r.size; i++ {
		sum += r.at(i)
	}
	return sum / float64(r.size)
}
