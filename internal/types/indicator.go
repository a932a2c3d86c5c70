package types

// Bands holds the three Bollinger band values for one window.
// Upper >= Middle >= Lower always holds when the bands are defined.
type Bands struct {
	Middle float64 `json:"middle"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
}

// FibLevels holds Fibonacci retracement levels derived from a window's
// high/low range.
type FibLevels struct {
	// Level0 is the window high (0% retracement).
	Level0 float64 `json:"level_0"`
	// Level382 is high - 0.382*(high-low).
	Level382 float64 `json:"level_382"`
	// Level618 is high - 0.618*(high-low).
	Level618 float64 `json:"level_618"`
}
