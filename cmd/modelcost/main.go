package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgl-project/modelcost/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:     "modelcost",
	Short:   "Run the model cost data pipeline",
	Long:    "modelcost fetches GPU prices and specs, HuggingFace model configs, and benchmark history, and exports the JSON data behind the GPU cost explorer.",
	Version: version.String(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Register all pipeline step commands
	rootCmd.AddCommand(CreateStepCommand(NewGPUStep()))
	rootCmd.AddCommand(CreateStepCommand(NewSnapshotStep()))
	rootCmd.AddCommand(CreateStepCommand(NewModelStep()))
	rootCmd.AddCommand(CreateStepCommand(NewRunAllStep()))
}
