package reader

import (
	"genogrove/types"

	"github.com/pkg/errors"
)

// parseBED reads chrom, chromStart, chromEnd and the optional name and
// strand columns. BED is 0-based half-open; [s, e) becomes [s, e-1].
func parseBED(line string) (Record, error) {
	f := splitFields(line)
	if len(f) < 3 {
		return Record{}, errors.Errorf("bed needs 3 columns, got %d", len(f))
	}
	start, err := parseUint(f[1], "start")
	if err != nil {
		return Record{}, err
	}
	end, err := parseUint(f[2], "end")
	if err != nil {
		return Record{}, err
	}
	if end <= start {
		return Record{}, errors.Errorf("empty or reversed feature %d-%d", start, end)
	}
	strand := types.StrandNone
	if len(f) >= 6 {
		if strand, err = parseStrand(f[5]); err != nil {
			return Record{}, err
		}
	}
	rec := Record{
		Label:      f[0],
		Coordinate: types.Coordinate{Interval: types.Interval{Start: start, End: end - 1}, Strand: strand},
	}
	if len(f) >= 4 {
		rec.Name = f[3]
	}
	return rec, nil
}
