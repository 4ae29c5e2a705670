package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mobilitycli/internal/config"
	"mobilitycli/internal/services"
)

// Set by the build script through -ldflags
var (
	Version   = config.AppVersion
	BuildTime = ""
)

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "mobility",
		Short:         "Inspect World Bank transport and urban mobility indicators",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch output, _ := cmd.Flags().GetString("output"); output {
			case outputText, outputJSON:
			default:
				return fmt.Errorf("unsupported output format %q (want text or json)", output)
			}
			switch dataset, _ := cmd.Flags().GetString("dataset"); dataset {
			case services.DatasetRaw, services.DatasetProcessed:
			default:
				return fmt.Errorf("unsupported dataset %q (want raw or processed)", dataset)
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("config", "", "config file (default: $MOBILITY_CONFIG, config.yaml or configs/config.yaml)")
	root.PersistentFlags().String("dataset", services.DatasetRaw, "dataset to read, 'raw' or 'processed'")
	root.PersistentFlags().StringP("output", "o", outputText, "format results, 'text' or 'json'")
	root.PersistentFlags().String("metrics-file", "", "write Prometheus metrics to this file on exit")
	addCommands(root)
	return root
}

func versionString() string {
	if BuildTime == "" {
		return Version
	}
	return Version + " (built " + BuildTime + ")"
}

func main() {
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
