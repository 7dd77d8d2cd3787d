package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raccog/caliga-bootloader/boot"
)

var (
	runOpen []string

	// haltFn stops the process after a fatal report.
	haltFn = func() { os.Exit(3) }
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full boot sequence and report allocator state",
		Long: `The run command performs the boot sequence described by the config:
it maps physical memory, builds the region allocator from the memory map,
reserves the slab pool, registers devices and opens the requested files from
the boot volume. Loader logs and fatal reports go to stderr through the
configured console.

Example:
  bootctl run --config boot.yaml
  bootctl run --config boot.yaml --open /EFI/caliga/kernel.elf --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun()
		},
	}
	cmd.Flags().StringSliceVar(&runOpen, "open", nil, "Open a file on the boot volume after boot (repeatable)")
	return cmd
}

type openedFile struct {
	Path string `json:"path"`
	Size uint64 `json:"size"`
}

type runResult struct {
	boot.Status
	Files []openedFile `json:"files"`
}

func runRun() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var res runResult
	ch := boot.NewConsole(cfg.Console, os.Stderr)
	err = boot.Guard(ch, haltFn, func() error {
		l, err := boot.Start(cfg, ch)
		if err != nil {
			return err
		}
		defer l.Close()

		for _, p := range runOpen {
			fd, err := l.Files.Open(p)
			if err != nil {
				return err
			}
			size, err := l.Files.Size(fd)
			if err != nil {
				return err
			}
			printVerbose("Opened %s (%d bytes)\n", p, size)
			res.Files = append(res.Files, openedFile{Path: p, Size: size})
		}
		if err := l.Validate(); err != nil {
			return err
		}
		res.Status = l.Status()
		return nil
	})
	if err != nil {
		return fmt.Errorf("boot failed: %w", err)
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("%s\n", renderRegions(res.Regions, res.FreeBytes))
	printInfo("%s\n", renderSlab(res.Slab))
	printInfo("%s", renderDevices(res.Devices))
	if len(res.Files) > 0 {
		printInfo("\n%s\n", style(titleStyle, fmt.Sprintf("Files (%d)", len(res.Files))))
		for _, f := range res.Files {
			printInfo("  %s  %d bytes\n", f.Path, f.Size)
		}
	}
	return nil
}
