package reader

import (
	"strings"

	"genogrove/types"

	"github.com/pkg/errors"
)

// parseGFF reads GFF3 and GTF feature lines. Both are 1-based closed;
// [s, e] becomes [s-1, e-1].
func parseGFF(line string, format Format) (Record, error) {
	f := strings.Split(line, "\t")
	if len(f) < 9 {
		return Record{}, errors.Errorf("%s needs 9 columns, got %d", format, len(f))
	}
	start, err := parseUint(f[3], "start")
	if err != nil {
		return Record{}, err
	}
	end, err := parseUint(f[4], "end")
	if err != nil {
		return Record{}, err
	}
	if start == 0 || end < start {
		return Record{}, errors.Errorf("invalid 1-based range %d-%d", start, end)
	}
	strand, err := parseStrand(f[6])
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		Label:      f[0],
		Coordinate: types.Coordinate{Interval: types.Interval{Start: start - 1, End: end - 1}, Strand: strand},
	}
	if format == FormatGTF {
		rec.Name = gtfName(f[8])
	} else {
		rec.Name = gffName(f[8])
	}
	return rec, nil
}

// gffName picks ID, then Name, from key=value;key=value attributes.
func gffName(attrs string) string {
	var name string
	for _, kv := range strings.Split(attrs, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok {
			continue
		}
		switch k {
		case "ID":
			return v
		case "Name":
			name = v
		}
	}
	return name
}

// gtfName picks transcript_id, then gene_id, from key "value"; attributes.
func gtfName(attrs string) string {
	var gene string
	for _, kv := range strings.Split(attrs, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), " ")
		if !ok {
			continue
		}
		v = strings.Trim(strings.TrimSpace(v), `"`)
		switch k {
		case "transcript_id":
			return v
		case "gene_id":
			gene = v
		}
	}
	return gene
}
