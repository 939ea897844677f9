package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidStrand is returned for strand characters outside + - . *
var ErrInvalidStrand = errors.New("invalid strand")

// Strand of a genomic coordinate.
type Strand byte

const (
	StrandAny     Strand = '*'
	StrandNone    Strand = '.'
	StrandForward Strand = '+'
	StrandReverse Strand = '-'
)

// ParseStrand accepts exactly one of + - . *
func ParseStrand(s string) (Strand, error) {
	if len(s) != 1 {
		return 0, errors.Wrapf(ErrInvalidStrand, "%q", s)
	}
	st := Strand(s[0])
	if st.rank() < 0 {
		return 0, errors.Wrapf(ErrInvalidStrand, "%q", s)
	}
	return st, nil
}

// rank orders strands as * < . < + < -
func (s Strand) rank() int {
	switch s {
	case StrandAny:
		return 0
	case StrandNone:
		return 1
	case StrandForward:
		return 2
	case StrandReverse:
		return 3
	}
	return -1
}

// Compatible reports whether features on s and other may overlap.
func (s Strand) Compatible(other Strand) bool {
	return s == StrandAny || other == StrandAny || s == other
}

func (s Strand) String() string {
	return string(rune(s))
}

const coordinateSize = intervalSize + 1

// Coordinate is a stranded closed interval.
type Coordinate struct {
	Interval
	Strand Strand
}

// NewCoordinate validates the interval and the strand.
func NewCoordinate(start, end uint64, strand Strand) (Coordinate, error) {
	iv, err := NewInterval(start, end)
	if err != nil {
		return Coordinate{}, err
	}
	if strand.rank() < 0 {
		return Coordinate{}, errors.Wrapf(ErrInvalidStrand, "%q", rune(strand))
	}
	return Coordinate{Interval: iv, Strand: strand}, nil
}

// MustCoordinate is NewCoordinate for constants and tests.
func MustCoordinate(start, end uint64, strand Strand) Coordinate {
	c, err := NewCoordinate(start, end, strand)
	if err != nil {
		panic(err)
	}
	return c
}

// Overlaps requires both range intersection and compatible strands.
func (c Coordinate) Overlaps(other Coordinate) bool {
	return c.Interval.Overlaps(other.Interval) && c.Strand.Compatible(other.Strand)
}

// Compare orders by start, end, then strand rank.
func (c Coordinate) Compare(other Coordinate) int {
	if r := c.Interval.Compare(other.Interval); r != 0 {
		return r
	}
	a, b := c.Strand.rank(), other.Strand.rank()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d-%d%s", c.Start, c.End, c.Strand)
}

// CoordinateType is the KeyType for Coordinate.
type CoordinateType struct{}

var (
	_ KeyType[Coordinate] = CoordinateType{}
	_ Bounded[Coordinate] = CoordinateType{}
)

func (CoordinateType) Name() string { return "genomic_coordinate" }

func (CoordinateType) Compare(a, b Coordinate) int { return a.Compare(b) }

func (CoordinateType) Overlap(a, b Coordinate) bool { return a.Overlaps(b) }

// Aggregate returns the bounding interval; the strand is kept when all inputs
// agree and becomes * otherwise.
func (CoordinateType) Aggregate(values []Coordinate) (Coordinate, error) {
	if len(values) == 0 {
		return Coordinate{}, ErrEmptyAggregate
	}
	out := values[0]
	for _, v := range values[1:] {
		out.Start = min(out.Start, v.Start)
		out.End = max(out.End, v.End)
		if v.Strand != out.Strand {
			out.Strand = StrandAny
		}
	}
	return out, nil
}

func (CoordinateType) Format(v Coordinate) string { return v.String() }

func (CoordinateType) AppendBinary(dst []byte, v Coordinate) []byte {
	dst = v.Interval.appendBinary(dst)
	return append(dst, byte(v.Strand))
}

func (CoordinateType) DecodeBinary(src []byte) (Coordinate, int, error) {
	if len(src) < coordinateSize {
		return Coordinate{}, 0, errors.Wrapf(ErrShortBuffer, "coordinate needs %d bytes, have %d", coordinateSize, len(src))
	}
	iv, err := decodeInterval(src)
	if err != nil {
		return Coordinate{}, 0, err
	}
	st := Strand(src[intervalSize])
	if st.rank() < 0 {
		return Coordinate{}, 0, errors.Wrapf(ErrInvalidStrand, "decoded %#x", src[intervalSize])
	}
	return Coordinate{Interval: iv, Strand: st}, coordinateSize, nil
}

// Beyond ignores the strand: a key starting after the query end cannot
// overlap it whatever its strand, and neither can anything after it.
func (CoordinateType) Beyond(key, query Coordinate) bool {
	return key.Start > query.End
}
