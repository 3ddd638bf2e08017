package sample

import (
	"errors"
	"math"
	"strconv"
)

// ErrEmptyInput is returned when sampling from an empty domain.
var ErrEmptyInput = errors.New("sample: empty input")

// ErrInvalidRange is returned when a range bound is NaN or infinite.
var ErrInvalidRange = errors.New("sample: range bounds must be finite")

// MaxDecimals is the largest number of decimal places a decimal sample renders.
const MaxDecimals = 6

// Mode selects integer or decimal range sampling.
type Mode string

const (
	ModeInteger Mode = "integer"
	ModeDecimal Mode = "decimal"
)

// Precision describes how a ranged sample is drawn and rendered.
type Precision struct {
	Mode Mode
	// Decimals applies to ModeDecimal only; it is clamped to [0, MaxDecimals].
	Decimals int
}

// Integer is the integer-mode Precision.
var Integer = Precision{Mode: ModeInteger}

// Decimal returns a decimal-mode Precision with the given number of places.
func Decimal(places int) Precision {
	return Precision{Mode: ModeDecimal, Decimals: places}
}

// Value is a ranged sample together with its rendered text.
type Value struct {
	Number float64
	Text   string
}

// String returns the rendered text.
func (v Value) String() string { return v.Text }

// ClampDecimals clamps d to [0, MaxDecimals].
func ClampDecimals(d int) int {
	return min(MaxDecimals, max(0, d))
}

// UniformIndex returns an integer in [0, n) with uniform probability.
//
// Precondition: n > 0, otherwise ErrEmptyInput.
func UniformIndex(src Source, n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyInput
	}
	return int(src.Int64N(int64(n))), nil
}

// Pick returns one element of list chosen uniformly.
//
// Precondition: len(list) > 0, otherwise ErrEmptyInput.
func Pick[T any](src Source, list []T) (T, error) {
	var zero T
	i, err := UniformIndex(src, len(list))
	if err != nil {
		return zero, err
	}
	return list[i], nil
}

// Range samples a value between lo and hi.
//
// A lo greater than hi is treated as the swapped pair. In integer mode the
// result lies in [ceil(lo), floor(hi)]; when that interval is empty the result
// is ceil(lo). In decimal mode the result is continuous over [lo, hi] and
// rendered with the clamped number of decimal places.
//
// Precondition: lo and hi are finite, otherwise ErrInvalidRange.
func Range(src Source, lo, hi float64, p Precision) (Value, error) {
	if !finite(lo) || !finite(hi) {
		return Value{}, ErrInvalidRange
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	if p.Mode == ModeDecimal {
		places := ClampDecimals(p.Decimals)
		x := lo + src.Float64()*(hi-lo)
		text := strconv.FormatFloat(x, 'f', places, 64)
		n, _ := strconv.ParseFloat(text, 64)
		return Value{Number: n, Text: text}, nil
	}

	minI := math.Ceil(lo)
	maxI := math.Floor(hi)
	if minI > maxI {
		return integerValue(minI), nil
	}
	span := int64(maxI-minI) + 1
	if span <= 0 {
		// Span overflowed int64; fall back to a continuous draw over the interval.
		return integerValue(math.Min(maxI, math.Floor(minI+src.Float64()*(maxI-minI+1)))), nil
	}
	return integerValue(minI + float64(src.Int64N(span))), nil
}

func integerValue(x float64) Value {
	if x == 0 {
		x = 0 // normalise -0
	}
	return Value{Number: x, Text: strconv.FormatFloat(x, 'f', 0, 64)}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
