package speed

// History is a bounded FIFO of the most recent converted speeds.
type History struct {
	size   int
	values []float64
}

func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{size: size, values: make([]float64, 0, size)}
}

// Push appends v and evicts the oldest value once the window is full.
func (h *History) Push(v float64) {
	if len(h.values) == h.size {
		copy(h.values, h.values[1:])
		h.values = h.values[:h.size-1]
	}
	h.values = append(h.values, v)
}

// Mean returns the arithmetic mean of the window, 0 when empty.
func (h *History) Mean() float64 {
	if len(h.values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range h.values {
		sum += v
	}
	return sum / float64(len(h.values))
}

func (h *History) Len() int { return len(h.values) }

func (h *History) Cap() int { return h.size }

// Values returns a copy of the window, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

func (h *History) clone() *History {
	return &History{size: h.size, values: append(make([]float64, 0, h.size), h.values...)}
}
