package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"genogrove/config"
	"genogrove/grove"
	"genogrove/reader"
	"genogrove/types"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type idxOptions struct {
	output string
	sorted bool
	bulk   bool
}

func newIdxCmd(flags *globalFlags) *cobra.Command {
	opts := &idxOptions{}
	cmd := &cobra.Command{
		Use:   "idx <input>",
		Short: "Build a grove index file from a BED/GFF/GTF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.sorted && opts.bulk {
				return errors.New("--sorted and --bulk are mutually exclusive")
			}
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			output := opts.output
			if output == "" {
				output = args[0] + ".gg"
			}
			mode := grove.ModeUnsorted
			if opts.sorted {
				mode = grove.ModeSorted
			}
			g, n, err := buildGrove(args[0], cfg, logger, mode, opts.bulk)
			if err != nil {
				return err
			}
			defer g.Close()
			if err := g.SaveFile(output); err != nil {
				return err
			}
			st, err := os.Stat(output)
			if err != nil {
				return errors.Wrap(err, "stat output")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %s records on %d indices -> %s (%s)\n",
				humanize.Comma(int64(n)), len(g.Labels()), output, humanize.Bytes(uint64(st.Size())))
			return nil
		},
	}
	opts.addFlags(cmd.Flags())
	return cmd
}

func (o *idxOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.output, "output", "o", "", "output file (default <input>.gg)")
	fs.BoolVarP(&o.sorted, "sorted", "s", false,
		"input is sorted per sequence by start, then end, then strand (* . + -); append to the rightmost leaf")
	fs.BoolVar(&o.bulk, "bulk", false, "buffer each sequence, sort it and build its index bottom-up")
}

// buildGrove streams path into a new grove and returns it with the number
// of records read.
func buildGrove(path string, cfg *config.Config, logger *zap.Logger, mode grove.Mode, bulk bool) (*annotationGrove, int, error) {
	g, err := grove.New[types.Coordinate, string, struct{}](types.CoordinateType{}, cfg.GroveOptions(logger)...)
	if err != nil {
		return nil, 0, err
	}
	r, err := reader.Open(path)
	if err != nil {
		g.Close()
		return nil, 0, err
	}
	defer r.Close()

	batches := map[string]*batch{}
	var order []string
	n := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			g.Close()
			return nil, 0, err
		}
		n++
		if !bulk {
			if _, err := g.InsertData(rec.Label, rec.Coordinate, rec.Name, mode); err != nil {
				g.Close()
				return nil, 0, errors.Wrapf(err, "%s:%d", path, rec.Line)
			}
			continue
		}
		b, ok := batches[rec.Label]
		if !ok {
			b = &batch{}
			batches[rec.Label] = b
			order = append(order, rec.Label)
		}
		b.values = append(b.values, rec.Coordinate)
		b.names = append(b.names, rec.Name)
	}
	for _, label := range order {
		b := batches[label]
		b.sort()
		if _, err := g.InsertDataBulk(label, b.values, b.names); err != nil {
			g.Close()
			return nil, 0, errors.Wrap(err, path)
		}
	}
	logger.Info("built grove",
		zap.String("input", path),
		zap.String("format", r.Format().String()),
		zap.String("compression", r.Compression().String()),
		zap.Int("records", n),
		zap.Int("indices", len(g.Labels())))
	return g, n, nil
}

// batch buffers the records of one sequence for a bulk load.
type batch struct {
	values []types.Coordinate
	names  []string
}

// sort orders the batch by coordinate, keeping file order among equal ones.
func (b *batch) sort() {
	perm := make([]int, len(b.values))
	for i := range perm {
		perm[i] = i
	}
	kt := types.CoordinateType{}
	slices.SortStableFunc(perm, func(i, j int) int {
		return kt.Compare(b.values[i], b.values[j])
	})
	values := make([]types.Coordinate, len(perm))
	names := make([]string, len(perm))
	for i, p := range perm {
		values[i], names[i] = b.values[p], b.names[p]
	}
	b.values, b.names = values, names
}
