// Command genogrove builds, queries and inspects grove index files.
//
//	genogrove idx peaks.bed -o peaks.gg
//	genogrove isec -t peaks.gg reads.bed
//	genogrove inspect peaks.gg
package main

import (
	"fmt"
	"os"

	"genogrove/config"
	"genogrove/grove"
	"genogrove/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// annotationGrove stores feature names as payloads; edges carry nothing.
type annotationGrove = grove.Grove[types.Coordinate, string, struct{}]

type globalFlags struct {
	configPath string
	verbose    bool
}

func (f *globalFlags) load() (*config.Config, *zap.Logger, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, nil, err
		}
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
	logger, err := cfg.Logger(f.verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "genogrove",
		Short:         "Index and intersect genomic intervals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging to stderr")
	root.AddCommand(newIdxCmd(flags), newIsecCmd(flags), newInspectCmd(flags))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
