// Package history holds the bounded per-instrument price series every
// indicator reads from.
package history

// DefaultCapacity is the number of recent samples kept per instrument.
const DefaultCapacity = 100

// PriceHistory is an insertion-ordered, bounded sequence of prices.
// When the capacity is exceeded the oldest sample is evicted first.
// It is not safe for concurrent use; the bot loop is its sole mutator.
type PriceHistory struct {
	prices   []float64
	capacity int
}

// NewPriceHistory creates an empty history with DefaultCapacity.
func NewPriceHistory() *PriceHistory {
	return NewPriceHistoryWithCapacity(DefaultCapacity)
}

// NewPriceHistoryWithCapacity creates an empty history bounded to capacity
// samples. Capacity must be positive.
func NewPriceHistoryWithCapacity(capacity int) *PriceHistory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &PriceHistory{
		prices:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a price at the end, evicting the oldest sample when the
// history is full. Callers must not feed non-finite numbers.
func (h *PriceHistory) Append(price float64) {
	h.prices = append(h.prices, price)
	if len(h.prices) > h.capacity {
		h.prices = h.prices[1:]
	}
}

// Len returns the number of stored samples.
func (h *PriceHistory) Len() int {
	return len(h.prices)
}

// Last returns the most recent price. ok is false when the history is empty.
func (h *PriceHistory) Last() (price float64, ok bool) {
	if len(h.prices) == 0 {
		return 0, false
	}

	return h.prices[len(h.prices)-1], true
}

// Window returns a copy of the last n samples, oldest first, or all samples
// when fewer than n are stored.
func (h *PriceHistory) Window(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}

	if n > len(h.prices) {
		n = len(h.prices)
	}

	window := make([]float64, n)
	copy(window, h.prices[len(h.prices)-n:])

	return window
}

// Snapshot returns a copy of the full series, oldest first.
func (h *PriceHistory) Snapshot() []float64 {
	return h.Window(len(h.prices))
}
