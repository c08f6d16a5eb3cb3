package delta

import "fmt"

// Interval is a half-open range [Start, End) of byte offsets.
type Interval struct {
	Start int
	End   int
}

// NewInterval returns the interval [start, end). It panics if start > end.
func NewInterval(start, end int) Interval {
	if start > end {
		panic(fmt.Sprintf("interval start %d > end %d", start, end))
	}
	return Interval{Start: start, End: end}
}

// IsEmpty reports whether the interval contains no offsets.
func (iv Interval) IsEmpty() bool {
	return iv.End <= iv.Start
}

// Len returns the number of bytes the interval covers.
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

// Contains reports whether offset lies inside the interval.
func (iv Interval) Contains(offset int) bool {
	return iv.Start <= offset && offset < iv.End
}

// IsBefore reports whether the entire interval lies before offset.
func (iv Interval) IsBefore(offset int) bool {
	return iv.End <= offset
}

// IsAfter reports whether the entire interval lies after offset.
func (iv Interval) IsAfter(offset int) bool {
	return iv.Start >= offset
}

// Intersect returns the overlap of two intervals. The result is an
// empty interval positioned at the gap when they do not overlap.
func (iv Interval) Intersect(other Interval) Interval {
	start := max(iv.Start, other.Start)
	end := min(iv.End, other.End)
	return Interval{Start: start, End: max(start, end)}
}

// Union returns the smallest interval covering both inputs. Empty
// inputs are ignored so unioning with a zero interval is the identity.
func (iv Interval) Union(other Interval) Interval {
	if iv.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return iv
	}
	return Interval{Start: min(iv.Start, other.Start), End: max(iv.End, other.End)}
}

// Translate shifts the interval forward by amount.
func (iv Interval) Translate(amount int) Interval {
	return Interval{Start: iv.Start + amount, End: iv.End + amount}
}

// TranslateNeg shifts the interval backward by amount. It panics if the
// shift would move the start below zero.
func (iv Interval) TranslateNeg(amount int) Interval {
	if iv.Start < amount {
		panic(fmt.Sprintf("interval start %d underflows translate by -%d", iv.Start, amount))
	}
	return Interval{Start: iv.Start - amount, End: iv.End - amount}
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Start, iv.End)
}
