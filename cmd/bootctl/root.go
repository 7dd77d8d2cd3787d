package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raccog/caliga-bootloader/boot"
)

var (
	// Global flags
	configPath string
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "bootctl",
	Short: "Run and inspect the caliga boot memory bring-up",
	Long: `bootctl runs the boot loader's memory bring-up (physical region allocator,
slab pool, device and file tables) over a simulated physical address space
described by a YAML boot config, and prints the resulting allocator state.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "boot.yaml", "Boot config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the boot config and applies the output flags to its
// console: loader logs are silenced for --quiet and --json and raised to
// debug for --verbose.
func loadConfig() (*boot.Config, error) {
	printVerbose("Loading config: %s\n", configPath)
	cfg, err := boot.LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	if quiet || jsonOut {
		cfg.Console.Quiet = true
	}
	if verbose {
		cfg.Console.LogLevel = "debug"
	}
	return cfg, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
