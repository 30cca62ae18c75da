// Command faultsplit partitions a collection of geological fault traces into
// per-region feature sets: every fault is assigned to each region polygon its
// geometry intersects, and one output file is written per region.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"faultsplit/config"
	"faultsplit/engine"
	"faultsplit/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load(".env")
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	flags := config.Default()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "faultsplit",
		Short: "Split fault traces into per-region feature sets",
		Long: "faultsplit reads a fault-trace dataset and a region-boundary dataset,\n" +
			"reprojects them into one reference system, intersects every fault with\n" +
			"every region it touches, and writes one feature collection per region.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flags > env > config file > defaults.
			cfg := config.Default()
			if err := cfg.FromFile(cfgFile, cmd.Flags().Changed("config")); err != nil {
				return err
			}
			cfg.FromEnv()
			if cmd.Flags().Changed("faults") {
				cfg.FaultsPath = flags.FaultsPath
			}
			if cmd.Flags().Changed("regions") {
				cfg.RegionsPath = flags.RegionsPath
			}
			if cmd.Flags().Changed("out") {
				cfg.OutputDir = flags.OutputDir
			}
			if cmd.Flags().Changed("name-field") {
				cfg.NameField = flags.NameField
			}
			if cmd.Flags().Changed("default-crs") {
				cfg.DefaultCRS = flags.DefaultCRS
			}
			if cmd.Flags().Changed("format") {
				cfg.OutputFormat = flags.OutputFormat
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = flags.Workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logger.Setup()
			summary, err := engine.Run(cfg, log)
			if err != nil {
				return err
			}

			fmt.Printf("\n--- Process complete ---\n")
			fmt.Printf("faults: %d, regions: %d, join pairs: %d\n",
				summary.FaultCount, summary.RegionCount, summary.PairCount)
			fmt.Printf("wrote %d of %d region files to %s\n",
				summary.GroupsWritten, summary.GroupCount, cfg.OutputDir)
			if summary.Discarded > 0 || summary.WriteFailures > 0 {
				fmt.Printf("issues: %d records discarded, %d write failures (see log)\n",
					summary.Discarded, summary.WriteFailures)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.FaultsPath, "faults", flags.FaultsPath, "fault traces (.geojson, .json or .shp)")
	f.StringVar(&flags.RegionsPath, "regions", flags.RegionsPath, "region boundaries (.geojson, .json or .shp)")
	f.StringVar(&flags.OutputDir, "out", flags.OutputDir, "output directory for per-region files")
	f.StringVar(&flags.NameField, "name-field", flags.NameField, "region attribute holding the region name")
	f.StringVar(&flags.DefaultCRS, "default-crs", flags.DefaultCRS, "reference assigned to datasets that declare none")
	f.StringVar(&flags.OutputFormat, "format", flags.OutputFormat, "output format: geojson or shapefile")
	f.IntVar(&flags.Workers, "workers", flags.Workers, "parallel join workers (1 = sequential)")
	f.StringVar(&cfgFile, "config", "faultsplit.yaml", "optional YAML config file")
	return cmd
}
