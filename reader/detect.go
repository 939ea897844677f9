// Package reader parses BED, GFF3 and GTF annotation files, plain or
// gzip/zstd compressed, into genomic coordinates.
package reader

import (
	"bufio"
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// ErrUnknownFormat is returned for paths whose extension names no
// supported annotation format.
var ErrUnknownFormat = errors.New("unknown annotation format")

type Format int

const (
	FormatBED Format = iota
	FormatGFF
	FormatGTF
)

func (f Format) String() string {
	switch f {
	case FormatBED:
		return "bed"
	case FormatGFF:
		return "gff"
	case FormatGTF:
		return "gtf"
	}
	return "unknown"
}

type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	}
	return "unknown"
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// DetectCompression inspects the leading bytes of a stream.
func DetectCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd
	}
	return CompressionNone
}

// DetectFormat maps a file name to its format, ignoring a trailing
// compression extension.
func DetectFormat(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range []string{".gz", ".bgz", ".zst", ".zstd"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch filepath.Ext(name) {
	case ".bed":
		return FormatBED, nil
	case ".gff", ".gff3":
		return FormatGFF, nil
	case ".gtf":
		return FormatGTF, nil
	}
	return 0, errors.Wrapf(ErrUnknownFormat, "%s", path)
}

// decompress peeks at r and wraps it in the matching decoder. The
// returned closer releases the decoder, not r.
func decompress(r io.Reader) (io.Reader, Compression, func() error, error) {
	br := bufio.NewReaderSize(r, 64<<10)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, 0, nil, errors.Wrap(err, "peek input")
	}
	noop := func() error { return nil }
	switch c := DetectCompression(head); c {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, nil, errors.Wrap(err, "gzip.NewReader")
		}
		return zr, c, zr.Close, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, c, nil, errors.Wrap(err, "zstd.NewReader")
		}
		return zr, c, func() error { zr.Close(); return nil }, nil
	default:
		return br, c, noop, nil
	}
}
