package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"genogrove/grove"
	"genogrove/reader"
	"genogrove/types"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIsecCmd(flags *globalFlags) *cobra.Command {
	var (
		target   string
		stranded bool
	)
	cmd := &cobra.Command{
		Use:   "isec -t <target> <query>",
		Short: "Print the query records that overlap the target",
		Long: "Print every query record overlapping at least one target feature on the\n" +
			"same sequence as BED (chrom, start, end; 0-based half-open). The target\n" +
			"is a .gg file written by idx or an annotation file indexed on the fly.\n" +
			"Strands are ignored unless --strand is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			var g *annotationGrove
			if strings.HasSuffix(target, ".gg") {
				g, err = grove.LoadFile[types.Coordinate, string, struct{}](target, types.CoordinateType{}, cfg.GroveOptions(logger)...)
			} else {
				g, _, err = buildGrove(target, cfg, logger, grove.ModeUnsorted, false)
			}
			if err != nil {
				return err
			}
			defer g.Close()

			hits, err := intersectFile(cmd.OutOrStdout(), g, args[0], stranded)
			if err != nil {
				return err
			}
			logger.Debug("intersect done", zap.String("query", args[0]), zap.Int("hits", hits))
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "target .gg or annotation file")
	cmd.Flags().BoolVar(&stranded, "strand", false, "only report overlaps on a compatible strand ('.' matches only '*')")
	cmd.MarkFlagRequired("target")
	return cmd
}

// intersectFile writes each record of path that overlaps g to w and
// returns how many were written.
func intersectFile(w io.Writer, g *annotationGrove, path string, stranded bool) (int, error) {
	r, err := reader.Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	bw := bufio.NewWriter(w)
	hits := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return hits, err
		}
		if g.Intersect(rec.Query(stranded), rec.Label).Empty() {
			continue
		}
		hits++
		c := rec.Coordinate
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\n", rec.Label, c.Start, c.End+1); err != nil {
			return hits, errors.Wrap(err, "write result")
		}
	}
	return hits, errors.Wrap(bw.Flush(), "flush results")
}
