// Command bootctl runs the boot loader's memory bring-up against a simulated
// physical address space and reports the allocator state it produces.
package main

func main() {
	execute()
}
