package client

import "sync"

// TextMeasurer resolves a batch of width requests. *Client implements
// it via the front-end round trip; tests plug in a fake.
type TextMeasurer interface {
	MeasureText(reqs []WidthReq) [][]float64
}

// WidthCache memoizes rendered string widths. Misses are batched into
// one measurement round trip. Read-mostly shared state; the mutex
// guards short critical sections only.
type WidthCache struct {
	mu       sync.Mutex
	font     string
	widths   map[string]float64
	measurer TextMeasurer
}

func NewWidthCache(font string, measurer TextMeasurer) *WidthCache {
	return &WidthCache{
		font:     font,
		widths:   make(map[string]float64),
		measurer: measurer,
	}
}

// MeasureWidth returns the rendered width of s, measuring through the
// front-end on a cache miss.
func (w *WidthCache) MeasureWidth(s string) float64 {
	w.mu.Lock()
	if width, ok := w.widths[s]; ok {
		w.mu.Unlock()
		return width
	}
	w.mu.Unlock()
	res := w.RequestWidths([]string{s})
	return res[0]
}

// RequestWidths resolves a batch of strings, measuring only the ones
// not already cached.
func (w *WidthCache) RequestWidths(strings []string) []float64 {
	out := make([]float64, len(strings))
	var missing []string
	var missingIx []int
	w.mu.Lock()
	for i, s := range strings {
		if width, ok := w.widths[s]; ok {
			out[i] = width
		} else {
			missing = append(missing, s)
			missingIx = append(missingIx, i)
		}
	}
	w.mu.Unlock()
	if len(missing) == 0 || w.measurer == nil {
		return out
	}
	res := w.measurer.MeasureText([]WidthReq{{Font: w.font, Strings: missing}})
	if len(res) == 0 || len(res[0]) != len(missing) {
		return out
	}
	w.mu.Lock()
	for i, width := range res[0] {
		w.widths[missing[i]] = width
		out[missingIx[i]] = width
	}
	w.mu.Unlock()
	return out
}
