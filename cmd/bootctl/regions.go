package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raccog/caliga-bootloader/boot/region"
	"github.com/raccog/caliga-bootloader/internal/logger"
	"github.com/raccog/caliga-bootloader/internal/physmem"
)

func init() {
	rootCmd.AddCommand(newRegionsCmd())
}

func newRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Build the physical region allocator and list its regions",
		Long: `The regions command builds only the physical region allocator from the
config's memory map and prints the resulting region list: contiguous
conventional entries appear merged, each with its alignment padding and free
cell count.

Example:
  bootctl regions --config boot.yaml
  bootctl regions --config boot.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions()
		},
	}
	return cmd
}

type regionsResult struct {
	Regions   []region.RegionInfo `json:"regions"`
	FreeBytes uintptr             `json:"free_bytes"`
}

func runRegions() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Init(logger.Options{Enabled: verbose})

	mem, err := physmem.New(uintptr(cfg.Memory.Base), uintptr(cfg.Memory.Size))
	if err != nil {
		return err
	}
	defer mem.Close()

	usable := cfg.Map.Usable()
	printVerbose("Usable entries: %d (%d bytes)\n", len(usable), cfg.Map.TotalUsable())

	a, err := region.New(mem, usable)
	if err != nil {
		return fmt.Errorf("failed to build region allocator: %w", err)
	}
	if err := a.Validate(); err != nil {
		return err
	}

	res := regionsResult{Regions: a.Regions(), FreeBytes: a.FreeBytes()}
	if jsonOut {
		return printJSON(res)
	}
	printInfo("%s", renderRegions(res.Regions, res.FreeBytes))
	return nil
}
