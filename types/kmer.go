package types

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidKmer is returned for empty, oversized or non-ACGT k-mers.
var ErrInvalidKmer = errors.New("invalid k-mer")

const (
	// MaxKmerLen is the number of bases that fit a 2-bit packed uint64.
	MaxKmerLen = 32
	kmerSize   = 9
)

const bases = "ACGT"

// Kmer is a DNA word packed at 2 bits per base, first base in the high bits.
type Kmer struct {
	Len  uint8
	Bits uint64
}

// NewKmer encodes seq; lower-case input is accepted.
func NewKmer(seq string) (Kmer, error) {
	if len(seq) == 0 || len(seq) > MaxKmerLen {
		return Kmer{}, errors.Wrapf(ErrInvalidKmer, "length %d not in [1,%d]", len(seq), MaxKmerLen)
	}
	var bits uint64
	for i := 0; i < len(seq); i++ {
		var code uint64
		switch seq[i] {
		case 'A', 'a':
			code = 0
		case 'C', 'c':
			code = 1
		case 'G', 'g':
			code = 2
		case 'T', 't':
			code = 3
		default:
			return Kmer{}, errors.Wrapf(ErrInvalidKmer, "invalid nucleotide %q at %d", seq[i], i)
		}
		bits = bits<<2 | code
	}
	return Kmer{Len: uint8(len(seq)), Bits: bits}, nil
}

// MustKmer is NewKmer for constants and tests.
func MustKmer(seq string) Kmer {
	k, err := NewKmer(seq)
	if err != nil {
		panic(err)
	}
	return k
}

// Compare orders by length, then by the packed value.
func (k Kmer) Compare(other Kmer) int {
	switch {
	case k.Len < other.Len:
		return -1
	case k.Len > other.Len:
		return 1
	}
	return cmpUint64(k.Bits, other.Bits)
}

func (k Kmer) String() string {
	var sb strings.Builder
	sb.Grow(int(k.Len))
	for i := int(k.Len) - 1; i >= 0; i-- {
		sb.WriteByte(bases[(k.Bits>>(2*uint(i)))&3])
	}
	return sb.String()
}

// KmerType is the KeyType for Kmer.
type KmerType struct{}

var (
	_ KeyType[Kmer] = KmerType{}
	_ Bounded[Kmer] = KmerType{}
)

func (KmerType) Name() string { return "kmer" }

func (KmerType) Compare(a, b Kmer) int { return a.Compare(b) }

func (KmerType) Overlap(a, b Kmer) bool { return a == b }

// Aggregate returns the greatest k-mer by (length, value); for inputs of one
// length that is the maximum encoded value.
func (t KmerType) Aggregate(values []Kmer) (Kmer, error) {
	return Max[Kmer](t, values)
}

func (KmerType) Format(v Kmer) string { return v.String() }

func (KmerType) AppendBinary(dst []byte, v Kmer) []byte {
	dst = append(dst, v.Len)
	return binary.LittleEndian.AppendUint64(dst, v.Bits)
}

func (KmerType) DecodeBinary(src []byte) (Kmer, int, error) {
	if len(src) < kmerSize {
		return Kmer{}, 0, errors.Wrapf(ErrShortBuffer, "k-mer needs %d bytes, have %d", kmerSize, len(src))
	}
	k := Kmer{Len: src[0], Bits: binary.LittleEndian.Uint64(src[1:kmerSize])}
	if k.Len == 0 || k.Len > MaxKmerLen {
		return Kmer{}, 0, errors.Wrapf(ErrInvalidKmer, "decoded length %d", k.Len)
	}
	if k.Len < MaxKmerLen && k.Bits>>(2*uint(k.Len)) != 0 {
		return Kmer{}, 0, errors.Wrapf(ErrInvalidKmer, "decoded bits exceed length %d", k.Len)
	}
	return k, kmerSize, nil
}

func (KmerType) Beyond(key, query Kmer) bool {
	return key.Compare(query) > 0
}
