package main

import (
	"fmt"
	"os"

	"genogrove/grove"
	"genogrove/types"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newInspectCmd(flags *globalFlags) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "inspect <file.gg>",
		Short: "Summarize a grove index file and dump its trees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			path := args[0]
			st, err := os.Stat(path)
			if err != nil {
				return errors.Wrap(err, "stat grove file")
			}
			g, err := grove.LoadFile[types.Coordinate, string, struct{}](path, types.CoordinateType{}, cfg.GroveOptions(logger)...)
			if err != nil {
				return err
			}
			defer g.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s, order %d, %s keys (%s external)\n",
				path, humanize.Bytes(uint64(st.Size())), g.Order(),
				humanize.Comma(int64(g.IndexedVertexCount())), humanize.Comma(int64(g.ExternalVertexCount())))
			for _, label := range g.Labels() {
				fmt.Fprintf(out, "  %-12s %s keys\n", label, humanize.Comma(int64(g.Size(label))))
			}
			if !dump {
				return nil
			}
			return g.Inspect(out)
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", true, "dump every tree level by level")
	return cmd
}
