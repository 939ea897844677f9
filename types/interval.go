package types

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidInterval is returned when an interval ends before it starts.
var ErrInvalidInterval = errors.New("invalid interval")

const intervalSize = 16

// Interval is a closed range [Start, End] of genomic positions.
type Interval struct {
	Start uint64
	End   uint64
}

// NewInterval validates start <= end.
func NewInterval(start, end uint64) (Interval, error) {
	if start > end {
		return Interval{}, errors.Wrapf(ErrInvalidInterval, "start %d > end %d", start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// MustInterval is NewInterval for constants and tests.
func MustInterval(start, end uint64) Interval {
	iv, err := NewInterval(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

// Overlaps reports whether the two closed ranges share at least one position.
// [100,200] and [200,300] overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start <= other.End && other.Start <= iv.End
}

// Compare orders by start, then end.
func (iv Interval) Compare(other Interval) int {
	if c := cmpUint64(iv.Start, other.Start); c != 0 {
		return c
	}
	return cmpUint64(iv.End, other.End)
}

// Len is the number of positions covered.
func (iv Interval) Len() uint64 {
	return iv.End - iv.Start + 1
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d-%d", iv.Start, iv.End)
}

func (iv Interval) appendBinary(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, iv.Start)
	return binary.LittleEndian.AppendUint64(dst, iv.End)
}

func decodeInterval(src []byte) (Interval, error) {
	if len(src) < intervalSize {
		return Interval{}, errors.Wrapf(ErrShortBuffer, "interval needs %d bytes, have %d", intervalSize, len(src))
	}
	iv := Interval{
		Start: binary.LittleEndian.Uint64(src[0:8]),
		End:   binary.LittleEndian.Uint64(src[8:16]),
	}
	if iv.Start > iv.End {
		return Interval{}, errors.Wrapf(ErrInvalidInterval, "decoded start %d > end %d", iv.Start, iv.End)
	}
	return iv, nil
}

// IntervalType is the KeyType for Interval.
type IntervalType struct{}

var (
	_ KeyType[Interval] = IntervalType{}
	_ Bounded[Interval] = IntervalType{}
)

func (IntervalType) Name() string { return "interval" }

func (IntervalType) Compare(a, b Interval) int { return a.Compare(b) }

func (IntervalType) Overlap(a, b Interval) bool { return a.Overlaps(b) }

// Aggregate returns the bounding interval of values.
func (IntervalType) Aggregate(values []Interval) (Interval, error) {
	if len(values) == 0 {
		return Interval{}, ErrEmptyAggregate
	}
	out := values[0]
	for _, v := range values[1:] {
		out.Start = min(out.Start, v.Start)
		out.End = max(out.End, v.End)
	}
	return out, nil
}

func (IntervalType) Format(v Interval) string { return v.String() }

func (IntervalType) AppendBinary(dst []byte, v Interval) []byte { return v.appendBinary(dst) }

func (IntervalType) DecodeBinary(src []byte) (Interval, int, error) {
	iv, err := decodeInterval(src)
	if err != nil {
		return Interval{}, 0, err
	}
	return iv, intervalSize, nil
}

// Beyond holds once key starts after the query ends; keys are ordered by start.
func (IntervalType) Beyond(key, query Interval) bool {
	return key.Start > query.End
}
