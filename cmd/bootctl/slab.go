package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raccog/caliga-bootloader/boot"
)

var slabAlloc int

func init() {
	rootCmd.AddCommand(newSlabCmd())
}

func newSlabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slab",
		Short: "Boot, then allocate slabs and show the occupancy bitmap",
		Long: `The slab command runs the boot sequence, performs --alloc additional
allocations from the slab pool and prints its occupancy bitmap, one character
per slab ('#' used, '.' free). Asking for more slabs than are free fails.

Example:
  bootctl slab --config boot.yaml --alloc 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlab()
		},
	}
	cmd.Flags().IntVarP(&slabAlloc, "alloc", "n", 0, "Number of slabs to allocate")
	return cmd
}

type slabResult struct {
	Slab      boot.SlabStatus `json:"slab"`
	Allocated []uintptr       `json:"allocated"`
	Bitmap    []byte          `json:"bitmap"`
}

func runSlab() error {
	if slabAlloc < 0 {
		return fmt.Errorf("--alloc must not be negative, got %d", slabAlloc)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var res slabResult
	ch := boot.NewConsole(cfg.Console, os.Stderr)
	err = boot.Guard(ch, haltFn, func() error {
		l, err := boot.Start(cfg, ch)
		if err != nil {
			return err
		}
		defer l.Close()

		for i := 0; i < slabAlloc; i++ {
			addr, _, err := l.Slab.Allocate(l.Slab.Layout())
			if err != nil {
				return fmt.Errorf("allocation %d of %d: %w", i+1, slabAlloc, err)
			}
			res.Allocated = append(res.Allocated, addr)
		}
		res.Slab = l.Status().Slab
		res.Bitmap = l.Slab.Bitmap()
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("%s\n", renderSlab(res.Slab))
	printInfo("%s", renderBitmap(res.Bitmap, res.Slab.Capacity))
	return nil
}
