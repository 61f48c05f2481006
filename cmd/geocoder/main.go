package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/postcode-geocoder/internal/config"
	"github.com/postcode-geocoder/internal/geocode"
	"github.com/postcode-geocoder/internal/refdata"
	"github.com/postcode-geocoder/internal/spatial"
	"github.com/postcode-geocoder/internal/table"
	"github.com/postcode-geocoder/internal/web"
)

func main() {
	settings := config.FromEnv()

	rootCmd := &cobra.Command{
		Use:   "geocoder",
		Short: "UK postcode extraction and geocoding engine",
		Long:  `Extracts validated postcodes from tabular data and resolves them to coordinates against a reference table`,
	}

	rootCmd.PersistentFlags().StringVar(&settings.ReferencePath, "ref", settings.ReferencePath, "reference table file (default: auto-discover)")
	rootCmd.PersistentFlags().StringVar(&settings.ReferenceDir, "ref-dir", settings.ReferenceDir, "directory searched during auto-discovery")
	rootCmd.PersistentFlags().StringVar(&settings.ReferencePattern, "ref-pattern", settings.ReferencePattern, "filename pattern for auto-discovery")
	rootCmd.PersistentFlags().BoolVar(&settings.Debug, "debug", settings.Debug, "enable debug output")

	rootCmd.AddCommand(createGeocodeCmd(&settings))
	rootCmd.AddCommand(createLookupCmd(&settings))
	rootCmd.AddCommand(createNearestCmd(&settings))
	rootCmd.AddCommand(createServeCmd(&settings))
	rootCmd.AddCommand(createPingCmd(&settings))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadIndex builds the reference index from the configured source.
// Build failures are fatal: a batch cannot proceed without a reference
// table.
func loadIndex(settings *config.Settings) *refdata.Index {
	var idx *refdata.Index
	var err error

	switch settings.ReferenceSource {
	case config.SourcePostgres:
		idx, err = refdata.LoadPostgres(refdata.PostgresSource{
			DSN:     settings.PostgresDSN,
			Table:   settings.ReferenceTable,
			Columns: settings.Columns,
		})
	default:
		idx, err = refdata.Load(refdata.LoadOptions{
			Path:    settings.ReferencePath,
			Dir:     settings.ReferenceDir,
			Pattern: settings.ReferencePattern,
			Columns: settings.Columns,
		})
	}

	if err != nil {
		var schemaErr *refdata.SchemaMismatchError
		if errors.As(err, &schemaErr) {
			log.Fatalf("Reference schema mismatch: %v", schemaErr)
		}
		log.Fatalf("Failed to load reference table: %v", err)
	}

	if idx.Conflicts() > 0 {
		fmt.Printf("Warning: %d conflicting alias keys ignored (first-seen record kept)\n", idx.Conflicts())
	}
	return idx
}

// createGeocodeCmd creates the batch geocoding subcommand.
func createGeocodeCmd(settings *config.Settings) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "geocode [input.csv]",
		Short: "Geocode every row of a delimited input table",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx := loadIndex(settings)

			input, err := table.ReadCSV(args[0])
			if err != nil {
				log.Fatalf("Failed to read input table: %v", err)
			}

			sources, err := input.SourceValues(settings.SourceColumn)
			if err != nil {
				log.Fatalf("Input schema mismatch: %v", err)
			}

			results, summary := geocode.Run(sources, idx, geocode.Options{
				Extract: settings.Extract,
				Workers: settings.Workers,
				Debug:   settings.Debug,
			})

			input.Augment(results, settings.Extract, settings.XName, settings.YName)

			if outPath == "" {
				outPath = args[0] + ".geocoded.csv"
			}
			if err := input.WriteCSV(outPath); err != nil {
				log.Fatalf("Failed to write output table: %v", err)
			}

			fmt.Println(summary.Report(settings.Extract))
			fmt.Printf("Output written to %s\n", outPath)
		},
	}

	cmd.Flags().BoolVar(&settings.Extract, "extract", settings.Extract, "extract postcodes from free text before matching")
	cmd.Flags().StringVar(&settings.SourceColumn, "source-col", settings.SourceColumn, "input column holding the address or postcode")
	cmd.Flags().IntVar(&settings.Workers, "workers", settings.Workers, "worker goroutines (1 = sequential)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: <input>.geocoded.csv)")

	return cmd
}

// createLookupCmd creates a single-postcode lookup subcommand.
func createLookupCmd(settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup [postcode]",
		Short: "Resolve a single postcode to coordinates",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			idx := loadIndex(settings)

			result := geocode.Match(args[0], idx)
			if !result.Matched {
				fmt.Printf("%s: unmatched (%s)\n", args[0], result.Reason)
				os.Exit(1)
			}
			fmt.Printf("%s: (%g, %g) via %s key %s\n", args[0], result.X, result.Y, result.Form, result.Key)
		},
	}
}

// createNearestCmd creates the spatial query subcommand.
func createNearestCmd(settings *config.Settings) *cobra.Command {
	var x, y, radius float64
	var k int

	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Find reference postcodes near a coordinate",
		Run: func(cmd *cobra.Command, args []string) {
			idx := loadIndex(settings)
			sp := spatial.Build(idx, settings.LatLon)

			var results []spatial.Result
			if radius > 0 {
				results = sp.Within(x, y, radius)
			} else {
				results = sp.Nearest(x, y, k)
			}

			if len(results) == 0 {
				fmt.Println("No postcodes found")
				return
			}
			for _, res := range results {
				fmt.Printf("%s (%g, %g) %.0fm\n", res.Record.Primary, res.Record.X, res.Record.Y, res.Distance)
			}
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "easting or longitude")
	cmd.Flags().Float64Var(&y, "y", 0, "northing or latitude")
	cmd.Flags().IntVar(&k, "k", 1, "number of nearest postcodes")
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in metres (overrides --k)")
	cmd.MarkFlagRequired("x")
	cmd.MarkFlagRequired("y")

	return cmd
}

// createServeCmd creates the HTTP API subcommand.
func createServeCmd(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookup, geocoding and nearest queries over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			idx := loadIndex(settings)
			sp := spatial.Build(idx, settings.LatLon)

			server := web.NewServer(settings.ListenAddr, idx, sp)
			if err := server.Start(); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		},
	}

	cmd.Flags().StringVar(&settings.ListenAddr, "listen", settings.ListenAddr, "listen address")
	return cmd
}

// createPingCmd creates a command to verify the reference table loads.
func createPingCmd(settings *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Verify the reference table loads and report its size",
		Run: func(cmd *cobra.Command, args []string) {
			idx := loadIndex(settings)
			fmt.Println("Reference table loaded successfully")
			fmt.Printf("Records: %d\n", idx.Len())
			fmt.Printf("Alias keys: %d\n", idx.AliasCount())
			fmt.Printf("Skipped rows: %d\n", idx.Skipped())
		},
	}
}
