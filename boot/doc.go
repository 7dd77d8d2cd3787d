// Package boot runs the boot loader's memory bring-up and owns the state it
// hands to the kernel.
//
// # Sequence
//
// Start performs, in order:
//
//  1. Map the physical address space (anonymous memory or a memory image).
//  2. Point the logger at the diagnostic channel.
//  3. Build the physical region allocator from the conventional entries of
//     the firmware memory map. Contiguous entries merge into one region.
//  4. Reserve the slab storage from the region allocator.
//  5. Build the slab pool over that storage.
//  6. Build the device table and the boot volume's file table. Their records
//     are slab allocations.
//
// Until step 5 completes there is no dynamic allocation: every header the
// region allocator needs lives inside the memory it manages.
//
// # Failure
//
// Configuration and exhaustion failures are returned as errors. Allocator
// invariant violations panic with an error wrapping alloc.ErrInvariant; the
// loader's top level runs under Guard, which writes a FATAL report to the
// diagnostic channel and halts.
//
// # Example
//
//	cfg, err := boot.LoadConfigFile("boot.yaml")
//	if err != nil {
//		return err
//	}
//	ch := boot.NewConsole(cfg.Console, os.Stdout)
//	return boot.Guard(ch, halt, func() error {
//		l, err := boot.Start(cfg, ch)
//		if err != nil {
//			return err
//		}
//		defer l.Close()
//		fd, err := l.Files.Open("/EFI/caliga/kernel.elf")
//		...
//	})
package boot
