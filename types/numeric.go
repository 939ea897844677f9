package types

import (
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"
)

const numericSize = 8

// Numeric is a point value. Two numerics overlap only when equal.
type Numeric struct {
	Value int64
}

func (n Numeric) Compare(other Numeric) int {
	switch {
	case n.Value < other.Value:
		return -1
	case n.Value > other.Value:
		return 1
	}
	return 0
}

func (n Numeric) String() string {
	return strconv.FormatInt(n.Value, 10)
}

// NumericType is the KeyType for Numeric.
type NumericType struct{}

var (
	_ KeyType[Numeric] = NumericType{}
	_ Bounded[Numeric] = NumericType{}
)

func (NumericType) Name() string { return "numeric" }

func (NumericType) Compare(a, b Numeric) int { return a.Compare(b) }

func (NumericType) Overlap(a, b Numeric) bool { return a.Value == b.Value }

// Aggregate returns the maximum.
func (t NumericType) Aggregate(values []Numeric) (Numeric, error) {
	return Max[Numeric](t, values)
}

func (NumericType) Format(v Numeric) string { return v.String() }

func (NumericType) AppendBinary(dst []byte, v Numeric) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(v.Value))
}

func (NumericType) DecodeBinary(src []byte) (Numeric, int, error) {
	if len(src) < numericSize {
		return Numeric{}, 0, errors.Wrapf(ErrShortBuffer, "numeric needs %d bytes, have %d", numericSize, len(src))
	}
	return Numeric{Value: int64(binary.LittleEndian.Uint64(src))}, numericSize, nil
}

func (NumericType) Beyond(key, query Numeric) bool {
	return key.Value > query.Value
}
