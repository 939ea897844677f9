package reader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"genogrove/types"

	"github.com/pkg/errors"
)

const maxLineSize = 16 << 20

// Record is one feature: its sequence name, 0-based closed coordinate
// and a display name (BED name, GFF ID/Name, GTF transcript or gene id).
type Record struct {
	Label      string
	Coordinate types.Coordinate
	Name       string
	Line       int
}

// Query is the coordinate to search with. Unless stranded, the strand is
// replaced by * so that the record matches features on either strand; BED
// files without a strand column read as '.', which is only compatible
// with *.
func (r Record) Query(stranded bool) types.Coordinate {
	c := r.Coordinate
	if !stranded {
		c.Strand = types.StrandAny
	}
	return c
}

// ParseError reports a malformed line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader yields records from one annotation stream.
type Reader struct {
	path        string
	format      Format
	compression Compression
	sc          *bufio.Scanner
	line        int
	done        bool
	closers     []func() error
}

// Open opens path, detecting the format from its extension and the
// compression from its content.
func Open(path string) (*Reader, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open annotation file")
	}
	r, err := newReader(f, path, format)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closers = append(r.closers, f.Close)
	return r, nil
}

// NewReader reads format records from r; compression is detected.
func NewReader(r io.Reader, format Format) (*Reader, error) {
	return newReader(r, "<stream>", format)
}

func newReader(r io.Reader, path string, format Format) (*Reader, error) {
	plain, c, closeFn, err := decompress(r)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	sc := bufio.NewScanner(plain)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return &Reader{
		path:        path,
		format:      format,
		compression: c,
		sc:          sc,
		closers:     []func() error{closeFn},
	}, nil
}

func (r *Reader) Format() Format {
	return r.format
}

func (r *Reader) Compression() Compression {
	return r.compression
}

// Next returns the next record, or io.EOF when the input is exhausted.
// Malformed lines are reported as *ParseError.
func (r *Reader) Next() (Record, error) {
	for !r.done && r.sc.Scan() {
		r.line++
		line := strings.TrimRight(r.sc.Text(), "\r")
		if skipLine(line) {
			continue
		}
		if r.format == FormatGFF && strings.HasPrefix(line, "##FASTA") {
			// sequences follow, no more features
			r.done = true
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		var rec Record
		var err error
		if r.format == FormatBED {
			rec, err = parseBED(line)
		} else {
			rec, err = parseGFF(line, r.format)
		}
		if err != nil {
			return Record{}, &ParseError{Path: r.path, Line: r.line, Err: err}
		}
		rec.Line = r.line
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return Record{}, errors.Wrapf(err, "%s: read line %d", r.path, r.line+1)
	}
	return Record{}, io.EOF
}

// Close releases the decoder and the file opened by Open.
func (r *Reader) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

// ReadAll drains path.
func ReadAll(path string) ([]Record, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var out []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func skipLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	return strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser")
}

func splitFields(line string) []string {
	if strings.Contains(line, "\t") {
		return strings.Split(line, "\t")
	}
	return strings.Fields(line)
}

func parseUint(field, what string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %q", what, field)
	}
	return v, nil
}

func parseStrand(field string) (types.Strand, error) {
	field = strings.TrimSpace(field)
	if field == "" || field == "?" {
		return types.StrandNone, nil
	}
	return types.ParseStrand(field)
}
