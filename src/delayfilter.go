package sal

// DelayFilter is a single-channel circular buffer of fixed maximum
// latency. Write() stores without advancing; Tick() advances both
// pointers; Read() returns the sample currently `latency` ticks behind the
// write pointer.
type DelayFilter[T Sample] struct {
	ring       []T // length maxLatency+1
	writeIndex int
	readIndex  int
	latency    int
	maxLatency int
}

// NewDelayFilter allocates a ring of max_latency+1 zeros with write index 0
// and read index positioned latency samples behind it.
func NewDelayFilter[T Sample](latency, maxLatency int) *DelayFilter[T] {
	if latency < 0 || latency > maxLatency {
		panic(&ProgrammingError{Msg: "DelayFilter: latency out of [0, max_latency] range"})
	}
	size := maxLatency + 1
	d := &DelayFilter[T]{
		ring:       make([]T, size),
		writeIndex: 0,
		latency:    latency,
		maxLatency: maxLatency,
	}
	d.readIndex = mod(size-latency, size)
	return d
}

func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func (d *DelayFilter[T]) size() int { return len(d.ring) }

// Write stores x at the write index without advancing; a second Write
// before Tick overwrites the former value.
func (d *DelayFilter[T]) Write(x T) {
	d.ring[d.writeIndex] = x
}

// WriteBlock bulk-writes src starting at the write index, wrapping as
// needed, and leaves the write index unadvanced (as if each sample had
// been Write()-only, not ticked).
func (d *DelayFilter[T]) WriteBlock(src []T) {
	n := d.size()
	idx := d.writeIndex
	for _, x := range src {
		d.ring[idx] = x
		idx = (idx + 1) % n
	}
}

// Read returns the sample currently at the read index.
func (d *DelayFilter[T]) Read() T {
	return d.ring[d.readIndex]
}

// ReadAt reads the sample `offset` ticks behind the write pointer.
// offset must be within [0, max_latency].
func (d *DelayFilter[T]) ReadAt(offset int) T {
	if offset < 0 || offset > d.maxLatency {
		panic(&ProgrammingError{Msg: "DelayFilter.ReadAt: offset exceeds max_latency"})
	}
	n := d.size()
	return d.ring[mod(d.writeIndex-offset, n)]
}

// FractionalReadAt linearly interpolates between floor(offset) and
// floor(offset)+1 ticks behind the write pointer.
func (d *DelayFilter[T]) FractionalReadAt(offset float64) T {
	if offset < 0 || offset > float64(d.maxLatency) {
		panic(&FatalError{Op: "DelayFilter.FractionalReadAt", Err: errOffsetExceedsMaxLatency})
	}
	lo := int(offset)
	frac := offset - float64(lo)
	a := d.ReadAt(lo)
	hi := lo + 1
	if hi > d.maxLatency {
		hi = d.maxLatency
	}
	b := d.ReadAt(hi)
	return a + T(frac)*(b-a)
}

// ReadBlock bulk-reads size(dst) samples starting at the read index.
func (d *DelayFilter[T]) ReadBlock(dst []T) {
	n := d.size()
	idx := d.readIndex
	for i := range dst {
		dst[i] = d.ring[idx]
		idx = (idx + 1) % n
	}
}

// Tick advances both the write and read pointers by n samples, modulo the
// ring size.
func (d *DelayFilter[T]) Tick(n int) {
	size := d.size()
	d.writeIndex = mod(d.writeIndex+n, size)
	d.readIndex = mod(d.readIndex+n, size)
}

// Filter writes src and reads dst in lockstep, ticking once per sample: a
// convenience for the common write-then-read-then-tick loop.
func (d *DelayFilter[T]) Filter(src, dst []T) {
	for i, x := range src {
		d.Write(x)
		dst[i] = d.Read()
		d.Tick(1)
	}
}

// SetLatency moves only the read pointer; ring contents are preserved (no
// data is reshuffled).
func (d *DelayFilter[T]) SetLatency(latency int) {
	if latency < 0 || latency > d.maxLatency {
		panic(&ProgrammingError{Msg: "DelayFilter.SetLatency: latency out of range"})
	}
	d.latency = latency
	d.readIndex = mod(d.writeIndex-latency, d.size())
}

func (d *DelayFilter[T]) Latency() int    { return d.latency }
func (d *DelayFilter[T]) MaxLatency() int { return d.maxLatency }

// Reset zeros the ring's storage without moving either pointer.
func (d *DelayFilter[T]) Reset() {
	clear(d.ring)
}
